// Package wizardservice runs the five-step campaign creation wizard: the
// per-session form store, step sequencing, checkout and payment
// confirmation. Paid drafts are handed to the campaign service through the
// CampaignGateway port.
package wizardservice

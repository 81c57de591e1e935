// Package campaignservice holds the SoundTik campaign lifecycle: the campaign
// repository, admin review, video metrics and the owner dashboard.
//
// Domain and application code depend only on ports; the memory, postgres and
// firestore adapters are chosen in bootstrap.
package campaignservice

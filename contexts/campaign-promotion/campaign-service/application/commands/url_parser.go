package commands

import (
	"net/url"
	"strings"

	domainerrors "soundtik/contexts/campaign-promotion/campaign-service/domain/errors"
)

// parseTikTokURL returns the video id and the creator handle (without "@")
// from links shaped like https://www.tiktok.com/@user/video/<id>. Short
// vm.tiktok.com links only carry an id.
func parseTikTokURL(rawURL string) (string, string, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || parsed.Host == "" {
		return "", "", domainerrors.ErrInvalidVideoURL
	}
	host := strings.ToLower(strings.TrimSpace(parsed.Host))
	if !strings.Contains(host, "tiktok.com") {
		return "", "", domainerrors.ErrInvalidVideoURL
	}

	segments := splitPathSegments(parsed.Path)
	if len(segments) >= 3 && strings.HasPrefix(segments[0], "@") && segments[1] == "video" {
		return segments[2], strings.TrimPrefix(segments[0], "@"), nil
	}
	if len(segments) >= 1 && strings.Contains(host, "vm.tiktok.com") {
		return segments[0], "", nil
	}
	return "", "", domainerrors.ErrInvalidVideoURL
}

func splitPathSegments(rawPath string) []string {
	parts := strings.Split(strings.Trim(strings.TrimSpace(rawPath), "/"), "/")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		if value := strings.TrimSpace(part); value != "" {
			items = append(items, value)
		}
	}
	return items
}

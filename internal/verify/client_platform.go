package verify

import (
	"regexp"
	"strings"
)

type ClientPlatform string

const (
	ClientPlatformAndroid      ClientPlatform = "android"
	ClientPlatformIOS          ClientPlatform = "ios"
	ClientPlatformDesktop      ClientPlatform = "desktop"
	ClientPlatformUnrecognized ClientPlatform = "unrecognized"
)

// rxUserAgentPlatform matches user agents such as "Signal-Android/6.2.0 Android/30" or "Desktop/5.0.0".
var rxUserAgentPlatform = regexp.MustCompile(`(?i)^(?:[a-z]+-)?(android|desktop|ios)/`)

// ParseClientPlatform derives the client platform from a user agent. It is used as a metric label, so unknown or
// empty user agents collapse into ClientPlatformUnrecognized.
func ParseClientPlatform(userAgent string) ClientPlatform {
	matches := rxUserAgentPlatform.FindStringSubmatch(strings.TrimSpace(userAgent))
	if matches == nil {
		return ClientPlatformUnrecognized
	}

	return ClientPlatform(strings.ToLower(matches[1]))
}

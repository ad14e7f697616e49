package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pion/webrtc/v4"
)

// ICEServer is one STUN/TURN entry handed to clients. The relay itself
// never contacts these servers.
type ICEServer struct {
	URLs       []string `mapstructure:"urls"`
	Username   string   `mapstructure:"username"`
	Credential string   `mapstructure:"credential"`
}

func (s ICEServer) validate() error {
	if len(s.URLs) == 0 {
		return errors.New("missing urls")
	}

	requiresTurnCreds := false
	for _, raw := range s.URLs {
		url := strings.TrimSpace(raw)
		if url == "" {
			return errors.New("urls must not contain empty entries")
		}
		if !isAllowedICEScheme(url) {
			return fmt.Errorf("unsupported url scheme: %q", url)
		}
		if strings.HasPrefix(url, "turn:") || strings.HasPrefix(url, "turns:") {
			requiresTurnCreds = true
		}
	}

	if requiresTurnCreds {
		if strings.TrimSpace(s.Username) == "" {
			return errors.New("turn urls require username")
		}
		if strings.TrimSpace(s.Credential) == "" {
			return errors.New("turn urls require credential")
		}
	}
	return nil
}

func isAllowedICEScheme(url string) bool {
	for _, scheme := range []string{"stun:", "stuns:", "turn:", "turns:"} {
		if strings.HasPrefix(url, scheme) {
			return true
		}
	}
	return false
}

// WebRTCICEServers converts the configured list into pion's client-facing
// shape, which serialises as the browser RTCIceServer dictionary.
func (c *Config) WebRTCICEServers() []webrtc.ICEServer {
	out := make([]webrtc.ICEServer, 0, len(c.ICEServers))
	for _, s := range c.ICEServers {
		urls := make([]string, 0, len(s.URLs))
		for _, u := range s.URLs {
			urls = append(urls, strings.TrimSpace(u))
		}
		server := webrtc.ICEServer{
			URLs:     urls,
			Username: strings.TrimSpace(s.Username),
		}
		if cred := strings.TrimSpace(s.Credential); cred != "" {
			server.Credential = cred
		}
		out = append(out, server)
	}
	return out
}

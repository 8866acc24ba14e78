package config

import (
	"os"
	"testing"
)

// unsetEnvForTest unsets an environment variable and registers cleanup to
// restore its original state (including distinguishing "unset" from "set to
// empty string").
func unsetEnvForTest(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	os.Unsetenv(key)
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	unsetEnvForTest(t, "DGCTL_API_URL")
	unsetEnvForTest(t, "DGCTL_STREAM_URL")
	unsetEnvForTest(t, "DGCTL_STATUS_POLL_INTERVAL")
	unsetEnvForTest(t, "DGCTL_STREAM_RECONNECT_ATTEMPTS")
}

func TestLoad_Defaults(t *testing.T) {
	// Create a temporary directory without any config file
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	clearConfigEnv(t)

	cfg := Load()

	tests := []struct {
		name     string
		want     interface{}
		accessor func(*Config) interface{}
	}{
		{
			name: "default API URL",
			accessor: func(c *Config) interface{} {
				return c.APIURL()
			},
			want: DefaultAPIURL,
		},
		{
			name: "default poll interval",
			accessor: func(c *Config) interface{} {
				return c.PollInterval()
			},
			want: DefaultPollInterval,
		},
		{
			name: "default reconnect attempts",
			accessor: func(c *Config) interface{} {
				return c.ReconnectAttempts()
			},
			want: DefaultReconnectAttempts,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.accessor(cfg)
			if got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestLoad_FromEnv(t *testing.T) {
	tests := []struct {
		name    string
		envVar  string
		envVal  string
		key     string
		wantStr string
		wantInt int
	}{
		{
			name:    "API URL from env",
			envVar:  "DGCTL_API_URL",
			envVal:  "https://custom.api.com",
			key:     "api.url",
			wantStr: "https://custom.api.com",
		},
		{
			name:    "poll interval from env",
			envVar:  "DGCTL_STATUS_POLL_INTERVAL",
			envVal:  "60",
			key:     "status.poll_interval",
			wantInt: 60,
		},
		{
			name:    "reconnect attempts from env",
			envVar:  "DGCTL_STREAM_RECONNECT_ATTEMPTS",
			envVal:  "5",
			key:     "stream.reconnect_attempts",
			wantInt: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.envVar, tt.envVal)

			cfg := Load()

			if tt.wantStr != "" {
				got := cfg.GetString(tt.key)
				if got != tt.wantStr {
					t.Errorf("GetString(%q) = %q, want %q", tt.key, got, tt.wantStr)
				}
			}
			if tt.wantInt != 0 {
				got := cfg.GetInt(tt.key)
				if got != tt.wantInt {
					t.Errorf("GetInt(%q) = %d, want %d", tt.key, got, tt.wantInt)
				}
			}
		})
	}
}

func TestConfig_All(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	clearConfigEnv(t)

	cfg := Load()
	all := cfg.All()

	if all == nil {
		t.Fatal("All() returned nil")
	}

	// Check that defaults are present
	if _, ok := all["api"]; !ok {
		t.Error("All() missing 'api' key")
	}
	if _, ok := all["status"]; !ok {
		t.Error("All() missing 'status' key")
	}
}

func TestConfig_Get(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	unsetEnvForTest(t, "DGCTL_API_URL")

	cfg := Load()

	// Get should work for nested keys
	got := cfg.Get("api.url")
	if got == nil {
		t.Error("Get(\"api.url\") returned nil")
	}

	str, ok := got.(string)
	if !ok {
		t.Errorf("Get(\"api.url\") type = %T, want string", got)
	}
	if str != DefaultAPIURL {
		t.Errorf("Get(\"api.url\") = %q, want %q", str, DefaultAPIURL)
	}
}

func TestConfig_APIURL(t *testing.T) {
	tests := []struct {
		name   string
		envVal string
		want   string
	}{
		{
			name:   "default",
			envVal: "",
			want:   DefaultAPIURL,
		},
		{
			name:   "from env",
			envVal: "https://api.example.com",
			want:   "https://api.example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			t.Setenv("HOME", tmpDir)

			if tt.envVal != "" {
				t.Setenv("DGCTL_API_URL", tt.envVal)
			} else {
				unsetEnvForTest(t, "DGCTL_API_URL")
			}

			cfg := Load()
			got := cfg.APIURL()

			if got != tt.want {
				t.Errorf("APIURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConfig_StreamURL(t *testing.T) {
	tests := []struct {
		name      string
		apiURL    string
		streamURL string
		want      string
	}{
		{
			name: "derived from default API URL",
			want: "ws://localhost:8000",
		},
		{
			name:   "derived from https API URL",
			apiURL: "https://api.example.com",
			want:   "wss://api.example.com",
		},
		{
			name:      "explicit override wins",
			apiURL:    "https://api.example.com",
			streamURL: "wss://stream.example.com",
			want:      "wss://stream.example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			t.Setenv("HOME", tmpDir)
			clearConfigEnv(t)

			if tt.apiURL != "" {
				t.Setenv("DGCTL_API_URL", tt.apiURL)
			}
			if tt.streamURL != "" {
				t.Setenv("DGCTL_STREAM_URL", tt.streamURL)
			}

			cfg := Load()
			got := cfg.StreamURL()

			if got != tt.want {
				t.Errorf("StreamURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConfig_PollInterval(t *testing.T) {
	tests := []struct {
		name   string
		envVal string
		want   int
	}{
		{
			name:   "default",
			envVal: "",
			want:   DefaultPollInterval,
		},
		{
			name:   "from env",
			envVal: "45",
			want:   45,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			t.Setenv("HOME", tmpDir)

			if tt.envVal != "" {
				t.Setenv("DGCTL_STATUS_POLL_INTERVAL", tt.envVal)
			} else {
				unsetEnvForTest(t, "DGCTL_STATUS_POLL_INTERVAL")
			}

			cfg := Load()
			got := cfg.PollInterval()

			if got != tt.want {
				t.Errorf("PollInterval() = %d, want %d", got, tt.want)
			}
		})
	}
}

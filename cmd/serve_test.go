package cmd

import (
	"testing"

	"dealerops/config"
)

func TestResolveListenPort(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		flagPort   int
		configPort int
		want       int
	}{
		{name: "flag wins", flagPort: 9090, configPort: 8380, want: 9090},
		{name: "config when flag unset", flagPort: 0, configPort: 8500, want: 8500},
		{name: "built-in default as last resort", flagPort: 0, configPort: 0, want: config.DefaultServerPort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveListenPort(tt.flagPort, tt.configPort); got != tt.want {
				t.Fatalf("expected port %d, got %d", tt.want, got)
			}
		})
	}
}

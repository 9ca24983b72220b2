package app

import "testing"

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		want      Command
		wantKnown bool
	}{
		{"empty defaults to serve", []string{}, CommandServe, true},
		{"nil defaults to serve", nil, CommandServe, true},
		{"serve", []string{"serve"}, CommandServe, true},
		{"migrate", []string{"migrate"}, CommandMigrate, true},
		{"healthcheck", []string{"healthcheck"}, CommandHealthcheck, true},
		{"worker is not a command", []string{"worker"}, CommandServe, false},
		{"unknown falls back to serve", []string{"unknown"}, CommandServe, false},
		{"extra args ignored", []string{"migrate", "--verbose"}, CommandMigrate, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, known := ParseCommand(tt.args)
			if got != tt.want || known != tt.wantKnown {
				t.Errorf("ParseCommand(%v) = (%q, %v), want (%q, %v)", tt.args, got, known, tt.want, tt.wantKnown)
			}
		})
	}
}

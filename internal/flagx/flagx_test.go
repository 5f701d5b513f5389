package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		names []string
		want  []string
	}{
		{
			name:  "short flag with separate value",
			args:  []string{"-c", "conf.json", "-a", "localhost"},
			names: []string{"c", "config"},
			want:  []string{"-c", "conf.json"},
		},
		{
			name:  "double dash with equals",
			args:  []string{"--config=alt.yaml", "card", "ls"},
			names: []string{"c", "config"},
			want:  []string{"--config=alt.yaml"},
		},
		{
			name:  "order preserved",
			args:  []string{"--db=first.db", "sync", "-db", "second.db", "--watch"},
			names: []string{"db"},
			want:  []string{"--db=first.db", "-db", "second.db"},
		},
		{
			name:  "bool style flag is kept without swallowing the next flag",
			args:  []string{"-db", "-api", "http://x"},
			names: []string{"db", "api"},
			want:  []string{"-db", "-api", "http://x"},
		},
		{
			name:  "stops at terminator",
			args:  []string{"card", "add", "--", "-db", "x.db"},
			names: []string{"db"},
			want:  []string{},
		},
		{
			name:  "nothing matches",
			args:  []string{"list", "ls", "--all"},
			names: []string{"db"},
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.names))
		})
	}
}

func TestConfigFile(t *testing.T) {
	assert.Equal(t, "a.json", ConfigFile([]string{"sync", "-c", "a.json"}))
	assert.Equal(t, "b.yaml", ConfigFile([]string{"--config=b.yaml", "list", "ls"}))
	assert.Equal(t, "second", ConfigFile([]string{"-c", "first", "--config", "second"}))
	assert.Equal(t, "", ConfigFile([]string{"list", "ls"}))
}

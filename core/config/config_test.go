package config

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v2"
)

func TestBuiltinConfig(t *testing.T) {
	rawConfig := make(map[string]interface{})
	assert.Nil(t, yaml.Unmarshal(defaultConfigData, &rawConfig))

	knownFields := make(map[string]bool)
	rt := reflect.TypeOf(Configuration{})
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		assert.NotEmpty(t, jsonTag)
		jsonField := strings.Split(jsonTag, ",")[0]
		knownFields[jsonField] = true

		if _, ok := rawConfig[jsonField]; !ok {
			assert.False(t, true, "default config missing field: %q", jsonField)
		}
	}

	for k := range rawConfig {
		_, ok := knownFields[k]
		assert.True(t, ok, "default config contains invalid field: %q", k)
	}
}

func TestDefaultConfig(t *testing.T) {
	// Will panic() on load failure because it should never happen at runtime.
	cfg := defaultConfig()
	assert.NotNil(t, cfg)
	assert.Nil(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	cases := map[string]struct {
		mutate  func(c *Configuration)
		wantErr bool
	}{
		"default is valid": {
			mutate: func(c *Configuration) {},
		},
		"negative port": {
			mutate:  func(c *Configuration) { c.SSHPort = -1 },
			wantErr: true,
		},
		"blank prompt": {
			mutate:  func(c *Configuration) { c.Prompt = "" },
			wantErr: true,
		},
		"line length too short": {
			mutate:  func(c *Configuration) { c.MaxLineLength = 1 },
			wantErr: true,
		},
		"duplicate usernames": {
			mutate: func(c *Configuration) {
				c.Users = append(c.Users, User{Username: "root"})
			},
			wantErr: true,
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			cfg := defaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr {
				assert.NotNil(t, err)
			} else {
				assert.Nil(t, err)
			}
		})
	}
}

func TestGetPasswords(t *testing.T) {
	cfg := &Configuration{
		GlobalPasswords: []string{"letmein"},
		Users: []User{
			{Username: "root", Passwords: []string{"root", "toor"}},
			{Username: "guest"},
		},
	}

	assert.Equal(t, []string{"root", "toor", "letmein"}, cfg.GetPasswords("root"))
	assert.Equal(t, []string{"letmein"}, cfg.GetPasswords("guest"))
	assert.Equal(t, []string{"letmein"}, cfg.GetPasswords("nobody"))
}

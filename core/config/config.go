package config

import (
	_ "embed"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

//go:embed default/config.yaml
var defaultConfigData []byte

const (
	ConfigurationName = "config.yaml"
	LogsDirName       = "session_logs"
	PrivateKeyName    = "private_key"
	AppLogName        = "app.log"
)

type Configuration struct {
	configFs afero.Fs

	Motd             string   `json:"motd"`
	Prompt           string   `json:"prompt" validate:"required"`
	MaxLineLength    int      `json:"max_line_length" validate:"gte=2,lte=65536"`
	RecordSessions   bool     `json:"record_sessions"`
	SSHPort          int      `json:"ssh_port" validate:"gte=0,lte=65535"`
	SSHBanner        string   `json:"ssh_banner"`
	AllowAnyPassword bool     `json:"allow_any_password"`
	GlobalPasswords  []string `json:"global_passwords"`
	Users            []User   `json:"users" validate:"unique=Username"`
}

type User struct {
	Username  string   `json:"username" validate:"required"`
	Passwords []string `json:"passwords" validate:"unique"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	return validate.Struct(c)
}

func (c *Configuration) fs() afero.Fs {
	return c.configFs
}

// CreateSessionLog creates a session recording with the given name.
func (c *Configuration) CreateSessionLog(name string) (afero.File, error) {
	return c.fs().Create(filepath.Join(LogsDirName, name))
}

// OpenAppLog opens the application event log in an append only state.
func (c *Configuration) OpenAppLog() (afero.File, error) {
	return c.fs().OpenFile(AppLogName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
}

func (c *Configuration) ReadAppLog() (afero.File, error) {
	return c.fs().OpenFile(AppLogName, os.O_RDONLY, 0600)
}

// PrivateKeyPem returns the bytes of the SSH host key.
func (c *Configuration) PrivateKeyPem() ([]byte, error) {
	return afero.ReadFile(c.fs(), PrivateKeyName)
}

// GetPasswords returns allowable passwords for the given username.
func (c *Configuration) GetPasswords(username string) []string {
	var out []string
	for _, v := range c.Users {
		if v.Username == username {
			out = append(out, v.Passwords...)
		}
	}

	out = append(out, c.GlobalPasswords...)
	return out
}

func defaultConfig() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}

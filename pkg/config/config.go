package config

import (
	"os"
	"sync"

	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"
	"sigs.k8s.io/yaml"
)

type Config struct {
	// Port Settings
	Host       string `json:"host"`       // The domain name of the server.
	ServerAddr string `json:"serverAddr"` // The address the server endpoint binds to.

	Auth struct {
		AccessTokenSecret      string `json:"accessTokenSecret"`
		RefreshTokenSecret     string `json:"refreshTokenSecret"`
		AccessTokenExpiryHour  int    `json:"accessTokenExpiryHour"`
		RefreshTokenExpiryHour int    `json:"refreshTokenExpiryHour"`
	} `json:"auth"`

	// Static two-factor codes. The flow is a stub: setup expects the two
	// registration codes, login verification expects the login code.
	TwoFA TwoFAConf `json:"twoFA"`

	Postgres struct {
		Host     string `json:"host"`
		Port     string `json:"port"`
		DBName   string `json:"dbname"`
		User     string `json:"user"`
		Password string `json:"password"`
		SSLMode  string `json:"sslmode"`
		TimeZone string `json:"TimeZone"`
		// ReplicaHost enables a read replica via dbresolver when set.
		ReplicaHost string `json:"replicaHost"`
		ReplicaPort string `json:"replicaPort"`
	} `json:"postgres"`
}

type TwoFAConf struct {
	RegistrationCode1 string `json:"registrationCode1"`
	RegistrationCode2 string `json:"registrationCode2"`
	LoginCode         string `json:"loginCode"`
}

var (
	once   sync.Once
	config *Config
)

func GetConfig() *Config {
	once.Do(func() {
		config = initConfig()
	})
	return config
}

func IsDebugMode() bool {
	return gin.Mode() == gin.DebugMode
}

// initConfig reads the configuration file. In debug mode it reads
// ./etc/debug-config.yaml (overridable via PROCATALOG_DEBUG_CONFIG_PATH),
// otherwise the config.yaml mounted from the ConfigMap.
func initConfig() *Config {
	cfg := &Config{}
	var configPath string
	if IsDebugMode() {
		if os.Getenv("PROCATALOG_DEBUG_CONFIG_PATH") != "" {
			configPath = os.Getenv("PROCATALOG_DEBUG_CONFIG_PATH")
		} else {
			configPath = "./etc/debug-config.yaml"
		}
	} else {
		configPath = "/etc/config/config.yaml"
	}
	klog.Info("config path: ", configPath)

	if err := readConfig(configPath, cfg); err != nil {
		klog.Error("init config", err)
		panic(err)
	}
	cfg.applyDefaults()
	return cfg
}

func readConfig(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func (c *Config) applyDefaults() {
	if c.ServerAddr == "" {
		c.ServerAddr = ":8088"
	}
	if c.Auth.AccessTokenExpiryHour == 0 {
		c.Auth.AccessTokenExpiryHour = 1
	}
	if c.Auth.RefreshTokenExpiryHour == 0 {
		c.Auth.RefreshTokenExpiryHour = 24
	}
	if c.TwoFA.RegistrationCode1 == "" {
		c.TwoFA.RegistrationCode1 = "123456"
	}
	if c.TwoFA.RegistrationCode2 == "" {
		c.TwoFA.RegistrationCode2 = "789012"
	}
	if c.TwoFA.LoginCode == "" {
		c.TwoFA.LoginCode = "112233"
	}
}

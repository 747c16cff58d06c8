package devops

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// Config carries everything the server needs to start. Values come from the
// environment; when SECUREENTRY_CONFIG_PARAM is set, a YAML document in SSM
// Parameter Store is loaded first and the environment overrides it.
type Config struct {
	DSN            string  `yaml:"dsn"`
	ListenAddr     string  `yaml:"listenAddr"`
	UploadDir      string  `yaml:"uploadDir"`
	PhotoBucket    string  `yaml:"photoBucket"`
	PhotoPrefix    string  `yaml:"photoPrefix"`
	SigningSecret  string  `yaml:"signingSecret"` // base64
	MailFrom       string  `yaml:"mailFrom"`
	FaceMatchURL   string  `yaml:"faceMatchURL"`
	FaceTolerance  float64 `yaml:"faceTolerance"`
	MaxConnections int     `yaml:"maxConnections"`
}

var (
	once    sync.Once
	loaded  *Config
	loadErr error
)

func Load(ctx context.Context) (*Config, error) {
	once.Do(func() {
		cfg := &Config{
			ListenAddr:     "0.0.0.0:8090",
			UploadDir:      "uploads",
			FaceTolerance:  0.5,
			MaxConnections: 10,
		}

		if param := os.Getenv("SECUREENTRY_CONFIG_PARAM"); param != "" {
			if err := loadFromSSM(ctx, param, cfg); err != nil {
				loadErr = err
				return
			}
		}

		applyEnv(cfg)

		if cfg.DSN == "" {
			loadErr = fmt.Errorf("no DSN configured")
			return
		}
		if cfg.SigningSecret == "" {
			loadErr = fmt.Errorf("no signing secret configured")
			return
		}
		loaded = cfg
	})
	return loaded, loadErr
}

func loadFromSSM(ctx context.Context, paramName string, cfg *Config) error {
	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return fmt.Errorf("load aws config: %w", err)
	}

	client := ssm.NewFromConfig(awsCfg)
	out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(paramName),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("get parameter: %w", err)
	}

	if err := yaml.Unmarshal([]byte(*out.Parameter.Value), cfg); err != nil {
		return fmt.Errorf("unmarshal yaml: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.DSN, "DSN")
	setString(&cfg.ListenAddr, "LISTEN_ADDR")
	setString(&cfg.UploadDir, "UPLOAD_DIR")
	setString(&cfg.PhotoBucket, "PHOTO_BUCKET")
	setString(&cfg.PhotoPrefix, "PHOTO_PREFIX")
	setString(&cfg.SigningSecret, "SECUREENTRY_SIGNING_SECRET")
	setString(&cfg.MailFrom, "MAIL_FROM")
	setString(&cfg.FaceMatchURL, "FACE_MATCH_URL")

	if v := os.Getenv("FACE_TOLERANCE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.FaceTolerance = f
		}
	}
	if v := os.Getenv("MAX_CONNECTIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxConnections = n
		}
	}
}

func setString(dst *string, envKey string) {
	if v := os.Getenv(envKey); v != "" {
		*dst = v
	}
}

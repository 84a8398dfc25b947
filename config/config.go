package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	BackendWorkersAI = "workersai"
	BackendRpc       = "grpc"

	DefaultModelID      = "@cf/runwayml/stable-diffusion-v1-5-inpainting"
	DefaultNumSteps     = 20
	MaxNumSteps         = 20
	DefaultTimeoutSecs  = 60
	DefaultBodyLimitMB  = 50
	DefaultRpcMethod    = "/inpaint.v1.InpaintService/Inpaint"
	DefaultWorkersAIUrl = "https://api.cloudflare.com/client/v4"
)

type Config struct {
	Api       ApiConfig       `yaml:"api"`
	Inference InferenceConfig `yaml:"inference"`
	Log       LogConfig       `yaml:"log"`
}

type ApiConfig struct {
	Port           string `yaml:"port"`
	AllowedOrigins string `yaml:"allowedOrigins"`
	BodyLimitMB    int    `yaml:"bodyLimitMB"`

	// StrictStatusCodes maps input errors to 400 instead of the uniform 500.
	StrictStatusCodes bool `yaml:"strictStatusCodes"`
}

type InferenceConfig struct {
	Backend        string          `yaml:"backend"`
	ModelID        string          `yaml:"modelId"`
	NumSteps       int             `yaml:"numSteps"`
	TimeoutSeconds int             `yaml:"timeoutSeconds"`
	WorkersAI      WorkersAIConfig `yaml:"workersAi"`
	Rpc            RpcConfig       `yaml:"rpc"`
}

type WorkersAIConfig struct {
	BaseUrl     string `yaml:"baseUrl"`
	AccountID   string `yaml:"accountId"`
	ApiToken    string `yaml:"apiToken"`
	VerifyToken bool   `yaml:"verifyToken"`
}

type RpcConfig struct {
	Peer   string `yaml:"peer"`
	Port   string `yaml:"port"`
	Method string `yaml:"method"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

func (i InferenceConfig) Timeout() time.Duration {
	return time.Duration(i.TimeoutSeconds) * time.Second
}

func (a ApiConfig) BodyLimit() int {
	return a.BodyLimitMB * 1024 * 1024
}

// ApplyDefaults fills every zero value that has a documented default.
func (c *Config) ApplyDefaults() {
	if c.Api.Port == "" {
		c.Api.Port = "8787"
	}
	if c.Api.AllowedOrigins == "" {
		c.Api.AllowedOrigins = "*"
	}
	if c.Api.BodyLimitMB <= 0 {
		c.Api.BodyLimitMB = DefaultBodyLimitMB
	}

	c.Inference.Backend = strings.ToLower(strings.TrimSpace(c.Inference.Backend))
	if c.Inference.Backend == "" {
		c.Inference.Backend = BackendWorkersAI
	}
	if c.Inference.ModelID == "" {
		c.Inference.ModelID = DefaultModelID
	}
	if c.Inference.NumSteps == 0 {
		c.Inference.NumSteps = DefaultNumSteps
	}
	if c.Inference.TimeoutSeconds <= 0 {
		c.Inference.TimeoutSeconds = DefaultTimeoutSecs
	}
	if c.Inference.WorkersAI.BaseUrl == "" {
		c.Inference.WorkersAI.BaseUrl = DefaultWorkersAIUrl
	}
	if c.Inference.Rpc.Method == "" {
		c.Inference.Rpc.Method = DefaultRpcMethod
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func (c Config) Validate() error {
	var errs []error

	if c.Inference.NumSteps < 1 || c.Inference.NumSteps > MaxNumSteps {
		errs = append(errs, fmt.Errorf("inference.numSteps must be between 1 and %d, got %d", MaxNumSteps, c.Inference.NumSteps))
	}
	if strings.TrimSpace(c.Inference.ModelID) == "" {
		errs = append(errs, errors.New("inference.modelId is required"))
	}

	switch c.Inference.Backend {
	case BackendWorkersAI:
		if c.Inference.WorkersAI.AccountID == "" {
			errs = append(errs, errors.New("inference.workersAi.accountId is required"))
		}
		if c.Inference.WorkersAI.ApiToken == "" {
			errs = append(errs, errors.New("inference.workersAi.apiToken is required"))
		}
	case BackendRpc:
		if c.Inference.Rpc.Peer == "" || c.Inference.Rpc.Port == "" {
			errs = append(errs, errors.New("inference.rpc.peer and inference.rpc.port are required"))
		}
		if !strings.HasPrefix(c.Inference.Rpc.Method, "/") {
			errs = append(errs, fmt.Errorf("inference.rpc.method must be a full method name, got %q", c.Inference.Rpc.Method))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown inference.backend %q", c.Inference.Backend))
	}

	return errors.Join(errs...)
}

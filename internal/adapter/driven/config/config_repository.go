package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/diillson/billing-alerts-go/internal/domain/repository"
	"github.com/diillson/billing-alerts-go/internal/shared/types"
	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixa todas as variáveis de ambiente lidas pela aplicação.
const EnvPrefix = "BILLING_"

// ConfigRepositoryImpl implementa o ConfigRepository.
type ConfigRepositoryImpl struct {
	environ func() []string
}

// NewConfigRepository cria uma nova implementação do ConfigRepository.
func NewConfigRepository() repository.ConfigRepository {
	return &ConfigRepositoryImpl{environ: os.Environ}
}

// NewConfigRepositoryWithEnv usa um ambiente fixo no lugar de os.Environ.
func NewConfigRepositoryWithEnv(environ map[string]string) repository.ConfigRepository {
	return &ConfigRepositoryImpl{environ: func() []string {
		out := make([]string, 0, len(environ))
		for k, v := range environ {
			out = append(out, k+"="+v)
		}
		return out
	}}
}

// Load aplica, em ordem, os valores padrão, o arquivo opcional e as variáveis BILLING_*.
func (r *ConfigRepositoryImpl) Load(filePath string) (*types.Config, error) {
	var config *types.Config
	if filePath != "" {
		loaded, err := r.LoadConfigFile(filePath)
		if err != nil {
			return nil, err
		}
		config = loaded
	} else {
		defaults := types.DefaultConfig()
		config = &defaults
	}

	if err := env.ParseWithOptions(config, env.Options{
		Prefix:      EnvPrefix,
		Environment: env.ToMap(r.environ()),
	}); err != nil {
		return nil, fmt.Errorf("error parsing environment: %w", err)
	}
	return config, nil
}

// LoadConfigFile carrega um arquivo de configuração TOML, YAML ou JSON sobre os valores padrão.
func (r *ConfigRepositoryImpl) LoadConfigFile(filePath string) (*types.Config, error) {
	fileExtension := filepath.Ext(filePath)
	fileExtension = strings.ToLower(fileExtension)

	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("error accessing config file: %w", err)
	}

	if fileInfo.IsDir() {
		return nil, fmt.Errorf("%s is a directory, not a file", filePath)
	}

	fileData, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	config := types.DefaultConfig()

	switch fileExtension {
	case ".toml":
		// a árvore TOML passa por JSON para preservar os valores padrão não informados
		tree, err := toml.LoadBytes(fileData)
		if err != nil {
			return nil, fmt.Errorf("error parsing TOML file: %w", err)
		}
		data, err := json.Marshal(tree.ToMap())
		if err != nil {
			return nil, fmt.Errorf("error parsing TOML file: %w", err)
		}
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("error parsing TOML file: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(fileData, &config); err != nil {
			return nil, fmt.Errorf("error parsing YAML file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(fileData, &config); err != nil {
			return nil, fmt.Errorf("error parsing JSON file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", fileExtension)
	}

	return &config, nil
}

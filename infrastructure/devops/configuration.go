package devops

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

type DBEntry struct {
	Name     string `yaml:"name" json:"name"`
	Host     string `yaml:"host" json:"host"`
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

func (db DBEntry) GetDSN(dbname string) string {
	// username:password@tcp(host:3306)/name?parseTime=true
	host := db.Host
	if !strings.Contains(host, ":") {
		host = host + ":3306"
	}
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true", db.Username, db.Password, host, dbname)
}

var (
	mu     sync.Mutex
	loaded = map[string][]DBEntry{}
)

// LoadDBConfig reads the YAML list of database entries stored in the SSM parameter paramName.
// Successful reads are cached for the life of the process.
func LoadDBConfig(ctx context.Context, paramName string) ([]DBEntry, error) {
	mu.Lock()
	defer mu.Unlock()

	if entries, ok := loaded[paramName]; ok {
		return entries, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := ssm.NewFromConfig(cfg)

	out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(paramName),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get parameter: %w", err)
	}
	if out.Parameter == nil || out.Parameter.Value == nil {
		return nil, fmt.Errorf("parameter %s is empty", paramName)
	}

	entries, err := ParseDBConfig([]byte(*out.Parameter.Value))
	if err != nil {
		return nil, err
	}
	loaded[paramName] = entries
	return entries, nil
}

func ParseDBConfig(data []byte) ([]DBEntry, error) {
	var entries []DBEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}
	return entries, nil
}

// FindDatabase matches name case-insensitively.
func FindDatabase(entries []DBEntry, name string) (DBEntry, bool) {
	for _, e := range entries {
		if strings.EqualFold(e.Name, name) {
			return e, true
		}
	}
	return DBEntry{}, false
}

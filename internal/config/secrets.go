package config

import (
	"context"
	"fmt"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// ParameterStore is the part of the SSM client used to resolve secrets.
type ParameterStore interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// NewSSMStore builds an SSM client from the default AWS credential chain.
func NewSSMStore(ctx context.Context) (ParameterStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return ssm.NewFromConfig(cfg), nil
}

// NeedsSecrets reports whether ResolveSecrets has anything to fetch.
func (c *Config) NeedsSecrets() bool {
	return c.Email.APIKey == "" && c.Email.APIKeySSMParam != ""
}

// ResolveSecrets fills the SendGrid key from Parameter Store when it is not set directly.
func (c *Config) ResolveSecrets(ctx context.Context, store ParameterStore) error {
	if !c.NeedsSecrets() {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	name := c.Email.APIKeySSMParam
	decrypt := true
	out, err := store.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           &name,
		WithDecryption: &decrypt,
	})
	if err != nil {
		return fmt.Errorf("get parameter %s: %w", name, err)
	}
	if out.Parameter == nil || out.Parameter.Value == nil || *out.Parameter.Value == "" {
		return fmt.Errorf("parameter %s has no value", name)
	}
	c.Email.APIKey = *out.Parameter.Value
	return nil
}

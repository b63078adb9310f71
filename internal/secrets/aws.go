package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/smithy-go"
)

// SecretsManagerAPI is the part of the Secrets Manager client used here.
type SecretsManagerAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// AWSSource reads the key pair from a Secrets Manager secret holding a JSON
// document with "api_key" and "api_key_secret".
type AWSSource struct {
	Client   SecretsManagerAPI
	SecretID string
}

func (a *AWSSource) Credentials(ctx context.Context) (Credentials, error) {
	out, err := a.Client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(a.SecretID),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "ResourceNotFoundException" {
			return Credentials{}, fmt.Errorf("%w: %s", ErrSecretNotFound, a.SecretID)
		}
		return Credentials{}, fmt.Errorf("failed to get AWS secret %s: %w", a.SecretID, err)
	}

	if out.SecretString == nil {
		return Credentials{}, fmt.Errorf("AWS secret %s has no string value", a.SecretID)
	}

	var creds Credentials
	if err := json.Unmarshal([]byte(*out.SecretString), &creds); err != nil {
		return Credentials{}, fmt.Errorf("failed to parse AWS secret %s: %w", a.SecretID, err)
	}
	if creds.APIKey == "" {
		return Credentials{}, missingField(a.SecretID, DefaultKeyField)
	}
	if creds.APIKeySecret == "" {
		return Credentials{}, missingField(a.SecretID, DefaultSecretField)
	}
	return creds, nil
}

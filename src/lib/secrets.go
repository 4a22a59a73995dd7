package lib

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// LoadSecrets reads a JSON key/value secret and exports every key that is not already set
// in the environment. Returns the number of keys exported.
func LoadSecrets(ctx context.Context, secretID string) (int, error) {
	cfg, err := awsGetSdkClient()
	if err != nil {
		return 0, err
	}
	client := secretsmanager.NewFromConfig(*cfg)
	out, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretID),
	})
	if err != nil {
		log.Printf("[Secrets] Error retrieving %s: %s\n", secretID, err.Error())
		return 0, err
	}
	return exportSecrets(aws.ToString(out.SecretString))
}

func exportSecrets(raw string) (int, error) {
	var values map[string]string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return 0, fmt.Errorf("secret is not a JSON object: %w", err)
	}
	n := 0
	for k, v := range values {
		k = strings.ToUpper(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if _, exists := os.LookupEnv(k); exists {
			continue
		}
		if err := os.Setenv(k, v); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

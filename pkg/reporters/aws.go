package reporters

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

// loadAWSConfig resolves AWS settings for region, preferring static
// credentials when configured and the default chain otherwise.
func loadAWSConfig(ctx context.Context, region string, creds *AWSCredentials) (aws.Config, error) {
	opts := []func(*awscfg.LoadOptions) error{awscfg.WithRegion(region)}
	if creds != nil && creds.AccessKeyID != "" {
		opts = append(opts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(creds.AccessKeyID, creds.SecretAccessKey, creds.SessionToken),
		))
	}

	cfg, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return cfg, nil
}

// messageAttributes returns the string attributes attached to every queued failure.
func messageAttributes(f Failure) map[string]string {
	attrs := map[string]string{
		"code": strconv.Itoa(f.Error.Code),
		"verb": f.Verb,
	}
	if id := f.correlationID(); id != "" {
		attrs["correlation_id"] = id
	}
	return attrs
}

func marshalFailure(f Failure) (string, error) {
	payload, err := json.Marshal(f)
	if err != nil {
		return "", fmt.Errorf("marshal failure: %w", err)
	}
	return string(payload), nil
}

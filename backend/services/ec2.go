// ABOUTME: EC2 instance type provider using the AWS SDK DescribeInstanceTypes API
// ABOUTME: Covers instance types missing from the static table

package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/smithy-go"
	"github.com/markalston/pypiserver-capacity/backend/models"
)

// DescribeInstanceTypesAPI is the part of the EC2 client the provider calls
type DescribeInstanceTypesAPI interface {
	DescribeInstanceTypes(ctx context.Context, params *ec2.DescribeInstanceTypesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstanceTypesOutput, error)
}

// EC2Provider resolves instance types through the EC2 API
type EC2Provider struct {
	api DescribeInstanceTypesAPI
}

// NewEC2Provider creates a provider over an existing EC2 client
func NewEC2Provider(api DescribeInstanceTypesAPI) *EC2Provider {
	return &EC2Provider{api: api}
}

// NewEC2ProviderFromConfig loads the default AWS credential chain.
// An empty region falls back to AWS_REGION or the shared config.
func NewEC2ProviderFromConfig(ctx context.Context, region string) (*EC2Provider, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return NewEC2Provider(ec2.NewFromConfig(cfg)), nil
}

func (p *EC2Provider) Name() string {
	return models.SourceEC2
}

// GetInstanceType implements InstanceTypeProvider
func (p *EC2Provider) GetInstanceType(ctx context.Context, name string) (models.InstanceType, error) {
	out, err := p.api.DescribeInstanceTypes(ctx, &ec2.DescribeInstanceTypesInput{
		InstanceTypes: []types.InstanceType{types.InstanceType(name)},
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "InvalidInstanceType" {
			return models.InstanceType{}, fmt.Errorf("%w: %s", models.ErrUnknownInstanceType, name)
		}
		return models.InstanceType{}, fmt.Errorf("describing instance type %s: %w", name, err)
	}

	for _, info := range out.InstanceTypes {
		if string(info.InstanceType) != name {
			continue
		}
		it := models.InstanceType{
			Name:   name,
			Source: models.SourceEC2,
		}
		if info.VCpuInfo != nil {
			it.VCPUCount = int(aws.ToInt32(info.VCpuInfo.DefaultVCpus))
		}
		if info.MemoryInfo != nil {
			it.MemoryMB = int(aws.ToInt64(info.MemoryInfo.SizeInMiB))
		}
		return it, nil
	}

	return models.InstanceType{}, fmt.Errorf("%w: %s", models.ErrUnknownInstanceType, name)
}

package services

import (
	"context"
	"fmt"
	"os"

	"mealplanner/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awssns "github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// PushService publishes alerts (urgent pantry depletion, mostly) to an
// SNS topic. Fan-out to individual devices is the topic's job, not ours.
type PushService struct {
	sns      *awssns.Client
	topicArn string
}

func NewPushService() (*PushService, error) {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "ap-south-1"
	}
	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &PushService{
		sns:      awssns.NewFromConfig(cfg),
		topicArn: os.Getenv("SNS_ALERTS_TOPIC_ARN"),
	}, nil
}

func (p *PushService) Publish(userID uint, alertType, message string) {
	if p.topicArn == "" {
		return
	}
	_, err := p.sns.Publish(context.TODO(), &awssns.PublishInput{
		TopicArn: aws.String(p.topicArn),
		Subject:  aws.String("Pantry alert"),
		Message:  aws.String(message),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"userId": {
				DataType:    aws.String("String"),
				StringValue: aws.String(fmt.Sprintf("%d", userID)),
			},
			"alertType": {
				DataType:    aws.String("String"),
				StringValue: aws.String(alertType),
			},
		},
	})
	if err != nil {
		logger.L().Warnw("sns publish failed", "user_id", userID, "error", err)
	}
}

package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"github.com/bh1mart/bh1mart/internal/models"
)

// AWSSESNotifier emails the operator about new orders and food requests via
// AWS SES. Delivery is best effort: failures are logged and never bubble up
// into the submission path.
type AWSSESNotifier struct {
	client    *ses.Client
	fromEmail string
	toEmail   string
	logger    *slog.Logger
}

// NewAWSSESNotifier creates a new AWSSESNotifier
func NewAWSSESNotifier(ctx context.Context, region, fromEmail, toEmail string, logger *slog.Logger) (*AWSSESNotifier, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &AWSSESNotifier{
		client:    ses.NewFromConfig(cfg),
		fromEmail: fromEmail,
		toEmail:   toEmail,
		logger:    logger,
	}, nil
}

// NotifyOrder emails the operator one accepted order.
func (n *AWSSESNotifier) NotifyOrder(ctx context.Context, order *models.Order) {
	var lines strings.Builder
	for _, item := range order.Items {
		fmt.Fprintf(&lines, "%dx %s (₹%d)\n", item.Quantity, item.Name, item.Price*item.Quantity)
	}

	subject := fmt.Sprintf("New order from %s (Room %s)", order.Name, order.Room)
	textBody := fmt.Sprintf(
		"Order %s\n\nName: %s\nRoom: %s\nPhone: %s\n\n%sTotal: ₹%d\n",
		order.ID, order.Name, order.Room, order.Phone, lines.String(), order.Total,
	)

	n.send(ctx, subject, textBody)
}

// NotifyFoodRequest emails the operator one stock request.
func (n *AWSSESNotifier) NotifyFoodRequest(ctx context.Context, request *models.FoodRequest) {
	subject := fmt.Sprintf("Food request: %s", request.FoodItem)
	textBody := fmt.Sprintf(
		"Request %s\n\nItem: %s\nDescription: %s\n\nFrom: %s (Room %s, %s)\n",
		request.ID, request.FoodItem, request.Description,
		request.Name, request.Room, request.Phone,
	)

	n.send(ctx, subject, textBody)
}

func (n *AWSSESNotifier) send(ctx context.Context, subject, textBody string) {
	input := &ses.SendEmailInput{
		Source: aws.String(n.fromEmail),
		Destination: &types.Destination{
			ToAddresses: []string{n.toEmail},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data:    aws.String(textBody),
					Charset: aws.String("UTF-8"),
				},
			},
		},
	}

	if _, err := n.client.SendEmail(ctx, input); err != nil {
		n.logger.Error("failed to send notification email",
			slog.String("subject", subject),
			slog.Any("error", err))
		return
	}

	n.logger.Info("notification email sent", slog.String("subject", subject))
}

// NoopNotifier is used when email notifications are disabled.
type NoopNotifier struct{}

func (NoopNotifier) NotifyOrder(ctx context.Context, order *models.Order)              {}
func (NoopNotifier) NotifyFoodRequest(ctx context.Context, request *models.FoodRequest) {}

// Package ses sends simulation summary emails via AWS SES.
package ses

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.uber.org/zap"

	appConfig "card-fee-simulator/internal/config"
	"card-fee-simulator/internal/models"
	"card-fee-simulator/internal/money"
	"card-fee-simulator/internal/utils"
)

// ErrSenderNotConfigured is returned when SES_SENDER_EMAIL is empty.
var ErrSenderNotConfigured = errors.New("SES sender email is not configured")

// Service handles SES email operations
type Service struct {
	client       *ses.Client
	fromEmail    string
	dashboardURL string
}

// EmailParams represents parameters for sending an email
type EmailParams struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
	ReplyTo  string
}

// SummaryParams contains data for a scenario's simulation summary email.
type SummaryParams struct {
	ScenarioID   string
	Email        string
	ResultCount  int
	Installments int
	TotalVolume  float64
	TopByCost    []OfferInfo
	TopByRating  []OfferInfo
	ResultsURL   string
	DashboardURL string
}

// OfferInfo contains info about a single ranked offer for email.
type OfferInfo struct {
	TerminalName string
	VendorName   string
	PlanName     string
	MonthlyCost  float64
	Rating       float64
	ContractURL  string
}

// SendEmailResult contains the result of sending an email
type SendEmailResult struct {
	MessageID string
	SentAt    time.Time
}

// NewService creates a new SES service
func NewService(ctx context.Context, appCfg *appConfig.Config) (*Service, error) {
	if appCfg.SESSenderEmail == "" {
		return nil, ErrSenderNotConfigured
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(appCfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &Service{
		client:       ses.NewFromConfig(cfg),
		fromEmail:    appCfg.SESSenderEmail,
		dashboardURL: appCfg.DashboardURL,
	}, nil
}

// SendEmail sends a basic email
func (s *Service) SendEmail(ctx context.Context, params EmailParams) (*SendEmailResult, error) {
	input := &ses.SendEmailInput{
		Source: aws.String(s.fromEmail),
		Destination: &types.Destination{
			ToAddresses: []string{params.To},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(params.Subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{},
		},
	}

	// Add HTML body if provided
	if params.HTMLBody != "" {
		input.Message.Body.Html = &types.Content{
			Data:    aws.String(params.HTMLBody),
			Charset: aws.String("UTF-8"),
		}
	}

	// Add text body if provided
	if params.TextBody != "" {
		input.Message.Body.Text = &types.Content{
			Data:    aws.String(params.TextBody),
			Charset: aws.String("UTF-8"),
		}
	}

	// Add reply-to
	if params.ReplyTo != "" {
		input.ReplyToAddresses = []string{params.ReplyTo}
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		utils.GetLogger().Error("Failed to send email",
			zap.String("to", params.To),
			zap.String("subject", params.Subject),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to send email: %w", err)
	}

	utils.GetLogger().Info("Email sent successfully",
		zap.String("to", params.To),
		zap.String("subject", params.Subject),
		zap.String("messageId", *result.MessageId),
	)

	return &SendEmailResult{
		MessageID: *result.MessageId,
		SentAt:    time.Now(),
	}, nil
}

// SendSimulationSummary sends the ranked offers of one scenario to its contact.
func (s *Service) SendSimulationSummary(ctx context.Context, params SummaryParams) (*SendEmailResult, error) {
	htmlBody, err := RenderSummaryHTML(params)
	if err != nil {
		return nil, fmt.Errorf("failed to render email template: %w", err)
	}

	return s.SendEmail(ctx, EmailParams{
		To:       params.Email,
		Subject:  fmt.Sprintf("Simulação %s: %d ofertas de maquininha para você", params.ScenarioID, params.ResultCount),
		HTMLBody: htmlBody,
		TextBody: RenderSummaryText(params),
	})
}

// NotifyScenario emails a batch scenario's outcome. Scenarios without a contact are skipped.
func (s *Service) NotifyScenario(ctx context.Context, scenario *models.BatchScenario, outcome models.ScenarioOutcome, resultsURL string) error {
	if scenario.Email == "" {
		return nil
	}
	params := BuildSummaryParams(scenario, outcome, resultsURL, s.dashboardURL)
	_, err := s.SendSimulationSummary(ctx, params)
	return err
}

// BuildSummaryParams creates email params from a scenario outcome.
func BuildSummaryParams(scenario *models.BatchScenario, outcome models.ScenarioOutcome, resultsURL, dashboardURL string) SummaryParams {
	return SummaryParams{
		ScenarioID:   scenario.ScenarioID,
		Email:        scenario.Email,
		ResultCount:  outcome.ResultCount,
		Installments: scenario.Request.Installments,
		TotalVolume:  money.Display(money.ToMajor(scenario.Request.TotalVolume())),
		TopByCost:    offerInfos(outcome.TopByCost),
		TopByRating:  offerInfos(outcome.TopByRating),
		ResultsURL:   resultsURL,
		DashboardURL: dashboardURL,
	}
}

func offerInfos(results []models.SimulationResult) []OfferInfo {
	infos := make([]OfferInfo, 0, len(results))
	for _, r := range results {
		infos = append(infos, OfferInfo{
			TerminalName: r.TerminalName,
			VendorName:   r.VendorName,
			PlanName:     r.PlanName,
			MonthlyCost:  r.MonthlyCost,
			Rating:       r.Rating,
			ContractURL:  r.ContractURL,
		})
	}
	return infos
}

var summaryTemplate = template.Must(template.New("simulation_summary").Parse(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <style>
        body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #0b7a53; color: white; padding: 30px; border-radius: 10px 10px 0 0; text-align: center; }
        .header h1 { margin: 0; font-size: 24px; }
        .content { background: #f9f9f9; padding: 30px; border-radius: 0 0 10px 10px; }
        .offer { background: white; border-radius: 8px; padding: 16px; margin: 12px 0; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        .offer h3 { margin: 0 0 6px 0; color: #0b7a53; }
        .offer .vendor { color: #666; font-size: 14px; }
        .cost { font-weight: bold; font-size: 18px; }
        .cta-button { display: inline-block; background: #0b7a53; color: white; padding: 12px 24px; text-decoration: none; border-radius: 8px; font-weight: bold; margin-top: 20px; }
        .footer { text-align: center; margin-top: 30px; color: #999; font-size: 12px; }
    </style>
</head>
<body>
    <div class="header">
        <h1>Sua simulação de maquininhas</h1>
        <p>{{.ResultCount}} ofertas para R$ {{printf "%.2f" .TotalVolume}} em vendas, {{.Installments}}x no parcelado</p>
    </div>
    <div class="content">
        <h2>Menor custo mensal</h2>
        {{range .TopByCost}}
        <div class="offer">
            <h3>{{.TerminalName}} · {{.PlanName}}</h3>
            <p class="vendor">{{.VendorName}}</p>
            <p class="cost">R$ {{printf "%.2f" .MonthlyCost}} / mês</p>
            {{if .ContractURL}}<a href="{{.ContractURL}}">Contratar</a>{{end}}
        </div>
        {{end}}

        <h2>Mais bem avaliadas</h2>
        {{range .TopByRating}}
        <div class="offer">
            <h3>{{.TerminalName}} · {{.PlanName}}</h3>
            <p class="vendor">{{.VendorName}} · nota {{printf "%.1f" .Rating}}</p>
            <p class="cost">R$ {{printf "%.2f" .MonthlyCost}} / mês</p>
        </div>
        {{end}}

        {{if .ResultsURL}}
        <div style="text-align: center;">
            <a href="{{.ResultsURL}}" class="cta-button">Baixar resultado completo</a>
        </div>
        {{end}}
        {{if .DashboardURL}}
        <p style="text-align: center;"><a href="{{.DashboardURL}}">Fazer uma nova simulação</a></p>
        {{end}}
    </div>
    <div class="footer">
        <p>Cenário {{.ScenarioID}}. Valores estimados com base nas taxas publicadas pelas empresas.</p>
    </div>
</body>
</html>`))

// RenderSummaryHTML renders the HTML email body.
func RenderSummaryHTML(params SummaryParams) (string, error) {
	var buf bytes.Buffer
	if err := summaryTemplate.Execute(&buf, params); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderSummaryText renders the plain text version.
func RenderSummaryText(params SummaryParams) string {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Cenário %s\n\n", params.ScenarioID))
	buf.WriteString(fmt.Sprintf("Encontramos %d ofertas para R$ %.2f em vendas mensais (%dx no parcelado).\n\n",
		params.ResultCount, params.TotalVolume, params.Installments))

	buf.WriteString("Menor custo mensal:\n")
	for i, o := range params.TopByCost {
		buf.WriteString(fmt.Sprintf("%d. %s (%s) - %s: R$ %.2f/mês\n", i+1, o.TerminalName, o.VendorName, o.PlanName, o.MonthlyCost))
	}

	buf.WriteString("\nMais bem avaliadas:\n")
	for i, o := range params.TopByRating {
		buf.WriteString(fmt.Sprintf("%d. %s (%s) - %s: nota %.1f, R$ %.2f/mês\n", i+1, o.TerminalName, o.VendorName, o.PlanName, o.Rating, o.MonthlyCost))
	}

	if params.ResultsURL != "" {
		buf.WriteString(fmt.Sprintf("\nResultado completo: %s\n", params.ResultsURL))
	}
	if params.DashboardURL != "" {
		buf.WriteString(fmt.Sprintf("Nova simulação: %s\n", params.DashboardURL))
	}

	return buf.String()
}

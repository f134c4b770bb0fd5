package services

import (
	"context"
	"net/mail"
	"strings"

	"github.com/justsurfingit/career-tracker/internal/models"
)

// minCompanyNameLen skips names like "X" or "Go" that would match every email.
const minCompanyNameLen = 3

type MatcherService struct {
	Jobs JobStore
}

func NewMatcherService(jobs JobStore) *MatcherService {
	return &MatcherService{Jobs: jobs}
}

// FindCompanyFromEmail matches an email to a tracked company by subject,
// sender display name, then sender domain.
func (s *MatcherService) FindCompanyFromEmail(ctx context.Context, subject, rawSender string) (*models.Company, error) {
	companies, err := s.Jobs.ListCompanies(ctx)
	if err != nil {
		return nil, err
	}
	return MatchCompany(companies, subject, rawSender), nil
}

func MatchCompany(companies []models.Company, subject, rawSender string) *models.Company {
	// "Stripe Recruiting <jobs@stripe.com>" -> name, address
	senderName, senderAddr := "", strings.ToLower(rawSender)
	if parsed, err := mail.ParseAddress(rawSender); err == nil {
		senderName = strings.ToLower(parsed.Name)
		senderAddr = strings.ToLower(parsed.Address)
	}
	domain := ""
	if at := strings.LastIndex(senderAddr, "@"); at >= 0 {
		domain = senderAddr[at+1:]
	}
	subjectLower := strings.ToLower(subject)

	for i := range companies {
		name := strings.ToLower(strings.TrimSpace(companies[i].Name))
		if len(name) < minCompanyNameLen {
			continue
		}
		if strings.Contains(subjectLower, name) ||
			(senderName != "" && strings.Contains(senderName, name)) ||
			(domain != "" && strings.Contains(domain, strings.ReplaceAll(name, " ", ""))) {
			return &companies[i]
		}
	}
	return nil
}

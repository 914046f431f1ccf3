package services

import "context"

// ContactService forwards contact form messages to the site administrator.
type ContactService struct {
	notifier *Notifier
}

func NewContactService(notifier *Notifier) *ContactService {
	return &ContactService{notifier: notifier}
}

func (s *ContactService) Submit(ctx context.Context, in ContactInput) error {
	if err := in.Validate(); err != nil {
		return err
	}
	s.notifier.ContactSubmitted(ctx, in)
	return nil
}

package user

import (
	"context"

	"github.com/darasa-io/darasa/core"
)

type serviceMock struct {
	service
}

// NewServiceMock returns a Service whose mails are sent synchronously.
func NewServiceMock(repo Repository, mailSvc core.EmailService) Service {
	return &serviceMock{
		service: service{
			repo:    repo,
			mailSvc: mailSvc,
		},
	}
}

func (svc *serviceMock) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	// run synchronously
	svc.sendPasswordResetMail(usr)
	return nil
}

func (svc *serviceMock) ResetPassword(ctx context.Context, rp ResetUserPassword) error {
	uid, err := decodeUID(rp.UID)
	if err != nil {
		return core.NewValidationError(errInvalidToken)
	}
	usr, err := svc.repo.GetUser(ctx, GetFilter{ID: uid})
	if err != nil {
		return err
	}
	if err = verifyToken(usr, rp.Token); err != nil {
		return core.NewValidationError(err)
	}
	if err = usr.SetPassword(rp.Password); err != nil {
		return err
	}
	if _, err = svc.repo.UpdateUser(ctx, usr); err != nil {
		return err
	}
	// run synchronously
	svc.sendPasswordResetDoneMail(usr)
	return nil
}

// MakeToken exposes password reset token generation to API tests.
func MakeToken(usr User) string {
	return makeToken(usr)
}

// EncodeUID exposes UID encoding to API tests.
func EncodeUID(usr User) string {
	return encodeUID(usr)
}

package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"verify_keep/internal/config"
	"verify_keep/internal/model"
	"verify_keep/internal/service"
	servicemocks "verify_keep/internal/service/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newContactConfig(inbox, careers string) *config.Config {
	return &config.Config{
		App:     config.AppConfig{Name: "verify_keep"},
		Contact: config.ContactConfig{Inbox: inbox, CareersInbox: careers},
	}
}

func TestContactService_SendContactMessage(t *testing.T) {
	req := &model.ContactRequest{
		Name:    "Visitor",
		Email:   "Visitor@Example.com",
		Subject: "Question\r\nBcc: spam@example.com",
		Message: "Hello there",
	}

	testCases := []struct {
		name        string
		cfg         *config.Config
		req         *model.ContactRequest
		setupMocks  func(m *servicemocks.Mailer)
		checkResult func(t *testing.T, err error)
	}{
		{
			name: "Success - 受信箱へ転送し返信先は訪問者",
			cfg:  newContactConfig("inbox@example.com", ""),
			req:  req,
			setupMocks: func(m *servicemocks.Mailer) {
				m.On("Send", mock.Anything, mock.MatchedBy(func(msg *service.Message) bool {
					return msg.To == "inbox@example.com" &&
						msg.ReplyTo == "visitor@example.com" &&
						msg.Subject == "[verify_keep] Question  Bcc: spam@example.com" &&
						strings.Contains(msg.Text, "Hello there") &&
						strings.Contains(msg.Text, "Visitor")
				})).Return(nil).Once()
			},
			checkResult: func(t *testing.T, err error) {
				assert.NoError(t, err)
			},
		},
		{
			name: "Success - 件名が空なら既定の件名",
			cfg:  newContactConfig("inbox@example.com", ""),
			req:  &model.ContactRequest{Name: "V", Email: "v@example.com", Message: "Hi"},
			setupMocks: func(m *servicemocks.Mailer) {
				m.On("Send", mock.Anything, mock.MatchedBy(func(msg *service.Message) bool {
					return msg.Subject == "[verify_keep] Contact form message"
				})).Return(nil).Once()
			},
			checkResult: func(t *testing.T, err error) {
				assert.NoError(t, err)
			},
		},
		{
			name:       "Failure - 受信箱が未設定",
			cfg:        newContactConfig("", ""),
			req:        req,
			setupMocks: func(m *servicemocks.Mailer) {},
			checkResult: func(t *testing.T, err error) {
				var appErr *model.AppError
				require.ErrorAs(t, err, &appErr)
				assert.Equal(t, "CONTACT_NOT_CONFIGURED", appErr.Detail.Code)
				assert.ErrorIs(t, err, model.ErrInternalServer)
			},
		},
		{
			name: "Failure - 送信失敗",
			cfg:  newContactConfig("inbox@example.com", ""),
			req:  req,
			setupMocks: func(m *servicemocks.Mailer) {
				m.On("Send", mock.Anything, mock.Anything).Return(errors.New("smtp down")).Once()
			},
			checkResult: func(t *testing.T, err error) {
				var appErr *model.AppError
				require.ErrorAs(t, err, &appErr)
				assert.Equal(t, "EMAIL_SEND_FAILED", appErr.Detail.Code)
				assert.ErrorIs(t, err, model.ErrDeliveryFailed)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mailer := servicemocks.NewMailer(t)
			tc.setupMocks(mailer)

			err := service.NewContactService(mailer, tc.cfg).SendContactMessage(context.Background(), tc.req)

			tc.checkResult(t, err)
		})
	}
}

func TestContactService_SendJobApplication(t *testing.T) {
	req := &model.JobApplicationRequest{
		Name:      "Grace",
		Email:     "grace@example.com",
		Phone:     "090-0000-0000",
		Position:  "Backend Engineer",
		ResumeURL: "https://example.com/resume.pdf",
		Message:   "I'd like to apply.",
	}

	t.Run("Success - 採用用の受信箱を優先する", func(t *testing.T) {
		mailer := servicemocks.NewMailer(t)
		mailer.On("Send", mock.Anything, mock.MatchedBy(func(msg *service.Message) bool {
			return msg.To == "careers@example.com" &&
				msg.ReplyTo == "grace@example.com" &&
				msg.Subject == "[verify_keep] Job application: Backend Engineer - Grace" &&
				strings.Contains(msg.Text, "Phone:    090-0000-0000") &&
				strings.Contains(msg.Text, "Resume:   https://example.com/resume.pdf")
		})).Return(nil).Once()

		err := service.NewContactService(mailer, newContactConfig("inbox@example.com", "careers@example.com")).
			SendJobApplication(context.Background(), req)
		assert.NoError(t, err)
	})

	t.Run("Success - 採用用が未設定なら通常の受信箱", func(t *testing.T) {
		mailer := servicemocks.NewMailer(t)
		mailer.On("Send", mock.Anything, mock.MatchedBy(func(msg *service.Message) bool {
			return msg.To == "inbox@example.com" && !strings.Contains(msg.Text, "Phone:")
		})).Return(nil).Once()

		noPhone := *req
		noPhone.Phone = ""
		err := service.NewContactService(mailer, newContactConfig("inbox@example.com", "")).
			SendJobApplication(context.Background(), &noPhone)
		assert.NoError(t, err)
	})

	t.Run("Failure - どちらも未設定", func(t *testing.T) {
		mailer := servicemocks.NewMailer(t)

		err := service.NewContactService(mailer, newContactConfig("", "")).
			SendJobApplication(context.Background(), req)
		assert.ErrorIs(t, err, model.ErrInternalServer)
	})
}

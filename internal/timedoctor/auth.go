package timedoctor

import (
	"context"
	"fmt"
	"net/http"

	"github.com/BalanceBalls/timedoctor-reports/internal/config"
	"github.com/BalanceBalls/timedoctor-reports/internal/logger"
)

const statusTotpNeeded = "totpNeeded"

// Login authenticates once and returns the session of the first company the
// account belongs to. There is no retry.
func (c *Client) Login(ctx context.Context, creds config.Credentials) (Session, error) {
	logger := logger.GetFromContext(ctx)
	logger.DebugContext(ctx, "logging in", "email", creds.Login())

	body := loginRequest{
		DeviceId: deviceId,
		Email:    creds.Login(),
		Password: creds.Password,
		TotpCode: creds.TotpCode,
	}

	var res envelope[loginResponse]
	if err := c.doRequest(ctx, http.MethodPost, "/authorization/login", nil, body, &res); err != nil {
		return Session{}, fmt.Errorf("%w: %w", ErrAuthenticationFailed, err)
	}

	if res.Data.Status == statusTotpNeeded {
		return Session{}, fmt.Errorf("%w: two-factor code required (set TWOFACODE)", ErrAuthenticationIncomplete)
	}

	if res.Data.Token == "" || len(res.Data.Companies) == 0 {
		return Session{}, fmt.Errorf("%w: login response has no token or company", ErrAuthenticationFailed)
	}

	first := res.Data.Companies[0]
	session := Session{
		CompanyId: first.Id,
		Timezone:  first.zone(),
		Token:     res.Data.Token,
	}

	logger.InfoContext(ctx, "logged in", "company_id", session.CompanyId, "timezone", session.Timezone)
	return session, nil
}

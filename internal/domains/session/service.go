package session

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"github.com/connectbox-tools/connectbox-agent/internal/constants"
	"github.com/connectbox-tools/connectbox-agent/internal/errs"
)

const (
	requestTimeout = time.Second * 10
	loginUsername  = "NULL"

	// The firmware gates responses on a desktop browser user agent.
	userAgent = "Mozilla/5.0 (Windows NT 10.0; WOW64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/47.0.2526.106 Safari/537.36"
)

// Service owns the device HTTP transport and the session token. The box
// allows a single authenticated session, so one Service must never be
// used for overlapping requests; the token field is updated only after
// a request fully completes.
type Service struct {
	client   *resty.Client
	host     string
	password string
	token    string
}

func NewService(host, password string) *Service {
	client := resty.New().
		SetBaseURL(fmt.Sprintf("http://%s", host)).
		SetTimeout(requestTimeout).
		SetCookieJar(nil).
		SetRedirectPolicy(resty.RedirectPolicyFunc(func(_ *http.Request, _ []*http.Request) error {
			// The box signals expired sessions via redirects, those must
			// surface as the received response instead of being chased.
			return http.ErrUseLastResponse
		}))

	client.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		r.SetHeader("X-Requested-With", "XMLHttpRequest")
		r.SetHeader("Referer", fmt.Sprintf("http://%s/index.html", host))
		r.SetHeader("User-Agent", userAgent)
		return nil
	})

	return &Service{
		client:   client,
		host:     host,
		password: password,
	}
}

func (s *Service) Host() string {
	return s.host
}

func (s *Service) Token() string {
	return s.token
}

// Invalidate drops the held token so the next call re-authenticates.
func (s *Service) Invalidate() {
	s.token = ""
}

// EnsureAuthenticated logs in when no token is held, otherwise it is a
// no-op. A held token is assumed valid until a request fails.
func (s *Service) EnsureAuthenticated() error {
	if s.token != "" {
		return nil
	}

	return s.Login()
}

// Login unconditionally performs the two phase handshake: fetch the
// login page for a fresh token, then submit the password with it.
func (s *Service) Login() error {
	if err := s.RefreshToken(); err != nil {
		return fmt.Errorf("Login: %w", err)
	}

	body := s.requestBody(constants.FunLogin, Params{
		{Key: "Username", Value: loginUsername},
		{Key: "Password", Value: s.password},
	})

	resp, err := s.post(constants.SetterPath, body)
	if err != nil {
		s.token = ""
		return fmt.Errorf("Login: %w: %v", errs.ErrConnection, err)
	}

	if resp.StatusCode() != http.StatusOK {
		log.Warn().Int("status", resp.StatusCode()).Str("host", s.host).Msg("Login: credentials rejected")
		s.token = ""
		return fmt.Errorf("Login: status %d: %w", resp.StatusCode(), errs.ErrLogin)
	}

	return s.rotateToken(resp, "Login")
}

// RefreshToken performs phase one of the handshake only. It yields a
// token that is enough for the reduced global settings read.
func (s *Service) RefreshToken() error {
	resp, err := s.client.R().Get(constants.LoginPagePath)
	if err != nil {
		log.Error().Err(err).Str("host", s.host).Msg("RefreshToken: login page unreachable")
		s.token = ""
		return fmt.Errorf("RefreshToken: %w: %v", errs.ErrConnection, err)
	}

	token, ok := cookieValue(resp, constants.SessionTokenCookie)
	if !ok {
		s.token = ""
		return fmt.Errorf("RefreshToken: no session cookie: %w", errs.ErrConnection)
	}

	s.token = token
	return nil
}

// Get runs a read-only function against the getter endpoint and returns
// the raw response body.
func (s *Service) Get(fun int) (string, error) {
	resp, err := s.post(constants.GetterPath, s.requestBody(fun, nil))
	if err != nil {
		s.token = ""
		return "", fmt.Errorf("Get: fun %d: %w: %v", fun, errs.ErrConnection, err)
	}

	if resp.StatusCode() != http.StatusOK {
		log.Debug().Int("status", resp.StatusCode()).Int("fun", fun).Msg("Get: unexpected status")
		s.token = ""
		return "", fmt.Errorf("Get: fun %d: status %d: %w", fun, resp.StatusCode(), errs.ErrProtocol)
	}

	if err = s.rotateToken(resp, "Get"); err != nil {
		return "", err
	}

	return string(resp.Body()), nil
}

// Set runs a mutating function against the setter endpoint. Params are
// appended to the body in the exact order supplied.
func (s *Service) Set(fun int, params Params) error {
	resp, err := s.post(constants.SetterPath, s.requestBody(fun, params))
	if err != nil {
		s.token = ""
		return fmt.Errorf("Set: fun %d: %w: %v", fun, errs.ErrConnection, err)
	}

	if resp.StatusCode() != http.StatusOK {
		log.Debug().Int("status", resp.StatusCode()).Int("fun", fun).Msg("Set: unexpected status")
		s.token = ""
		return fmt.Errorf("Set: fun %d: status %d: %w", fun, resp.StatusCode(), errs.ErrProtocol)
	}

	return s.rotateToken(resp, "Set")
}

// Logout releases the device session. Safe to call without a token.
func (s *Service) Logout() error {
	if s.token == "" {
		return nil
	}

	if err := s.Set(constants.FunLogout, nil); err != nil {
		return fmt.Errorf("Logout: %w", err)
	}

	s.token = ""
	return nil
}

func (s *Service) post(path, body string) (*resty.Response, error) {
	request := s.client.R().
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetBody(body)

	if s.token != "" {
		request.SetCookie(&http.Cookie{
			Name:  constants.SessionTokenCookie,
			Value: s.token,
		})
	}

	return request.Post(path)
}

// requestBody renders the literal body string. The token field must
// precede the function code, the firmware rejects any other order.
func (s *Service) requestBody(fun int, params Params) string {
	var b strings.Builder
	fmt.Fprintf(&b, "token=%s&fun=%d", s.token, fun)
	for _, param := range params {
		fmt.Fprintf(&b, "&%s=%s", param.Key, param.Value)
	}

	return b.String()
}

// rotateToken stores the per-request token from the response cookie.
func (s *Service) rotateToken(resp *resty.Response, caller string) error {
	token, ok := cookieValue(resp, constants.SessionTokenCookie)
	if !ok {
		s.token = ""
		return fmt.Errorf("%s: response without session cookie: %w", caller, errs.ErrProtocol)
	}

	s.token = token
	return nil
}

func cookieValue(resp *resty.Response, name string) (value string, ok bool) {
	for _, cookie := range resp.Cookies() {
		if cookie.Name == name {
			return cookie.Value, true
		}
	}

	return "", false
}

package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

const defaultToolkitBaseURL = "https://identitytoolkit.googleapis.com/v1"

// ToolkitConfig はIdentity Toolkit REST APIクライアントの設定。
type ToolkitConfig struct {
	APIKey string
	// BaseURL はAPIのベースURL。空の場合はGoogleの本番エンドポイント。
	BaseURL string
	// HTTPClient は通信に使うクライアント。nilの場合はhttp.DefaultClient。
	HTTPClient *http.Client
}

// EmulatorBaseURL はローカルエミュレーターのホストからベースURLを組み立てる。
func EmulatorBaseURL(host string) string {
	return "http://" + host + "/identitytoolkit.googleapis.com/v1"
}

// ToolkitClient はIdentity Toolkit REST APIを使うAuthority実装。
// サインイン中ユーザーはプロセス内のメモリにのみ保持する。
type ToolkitClient struct {
	config ToolkitConfig
	client *http.Client

	mu        sync.Mutex
	current   *AuthorityUser
	idToken   string
	listeners listenerSet
}

// NewToolkitClient はToolkitClientを生成する。生成直後は未サインイン状態。
func NewToolkitClient(config ToolkitConfig) *ToolkitClient {
	if config.BaseURL == "" {
		config.BaseURL = defaultToolkitBaseURL
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	client := config.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	return &ToolkitClient{config: config, client: client}
}

// toolkitAuthResponse はsignUp/signInWithPasswordのレスポンス。
type toolkitAuthResponse struct {
	LocalID     string `json:"localId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	IDToken     string `json:"idToken"`
}

// toolkitUpdateResponse はaccounts:updateのレスポンス。
type toolkitUpdateResponse struct {
	LocalID     string `json:"localId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

// toolkitLookupResponse はaccounts:lookupのレスポンス。
type toolkitLookupResponse struct {
	Users []struct {
		LocalID     string `json:"localId"`
		Email       string `json:"email"`
		DisplayName string `json:"displayName"`
		CreatedAt   string `json:"createdAt"` // エポックミリ秒の文字列
	} `json:"users"`
}

// toolkitErrorResponse はエラーレスポンス。
type toolkitErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// CreateAccount はアカウントを作成し、作成したユーザーでサインインする。
func (c *ToolkitClient) CreateAccount(ctx context.Context, email, password string) (*AuthorityUser, error) {
	var resp toolkitAuthResponse
	err := c.post(ctx, "accounts:signUp", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return c.completeSignIn(ctx, resp), nil
}

// Authenticate はメールアドレスとパスワードでサインインする。
func (c *ToolkitClient) Authenticate(ctx context.Context, email, password string) (*AuthorityUser, error) {
	var resp toolkitAuthResponse
	err := c.post(ctx, "accounts:signInWithPassword", map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return c.completeSignIn(ctx, resp), nil
}

// completeSignIn は作成日時を補完してからサインイン状態にする。
// 作成日時の取得に失敗してもサインイン自体は成功として扱う。
func (c *ToolkitClient) completeSignIn(ctx context.Context, resp toolkitAuthResponse) *AuthorityUser {
	u := &AuthorityUser{
		UID:         resp.LocalID,
		Email:       resp.Email,
		DisplayName: resp.DisplayName,
	}

	lookedUp, err := c.lookup(ctx, resp.IDToken)
	if err != nil {
		slog.Warn("failed to look up account metadata",
			slog.String("user_id", resp.LocalID),
			slog.String("error", err.Error()),
		)
	} else {
		u.CreatedAt = lookedUp.CreatedAt
		if u.DisplayName == "" {
			u.DisplayName = lookedUp.DisplayName
		}
	}

	c.setCurrent(u, resp.IDToken)
	return copyUser(u)
}

func (c *ToolkitClient) lookup(ctx context.Context, idToken string) (*AuthorityUser, error) {
	var resp toolkitLookupResponse
	if err := c.post(ctx, "accounts:lookup", map[string]any{"idToken": idToken}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Users) == 0 {
		return nil, errors.New("lookup returned no users")
	}

	raw := resp.Users[0]
	u := &AuthorityUser{UID: raw.LocalID, Email: raw.Email, DisplayName: raw.DisplayName}
	if raw.CreatedAt != "" {
		ms, err := strconv.ParseInt(raw.CreatedAt, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid createdAt %q: %w", raw.CreatedAt, err)
		}
		u.CreatedAt = time.UnixMilli(ms).UTC()
	}
	return u, nil
}

// SignOut はサインアウトする。トークンはメモリ上で破棄するだけで、通信は発生しない。
func (c *ToolkitClient) SignOut(ctx context.Context) error {
	c.setCurrent(nil, "")
	return nil
}

// UpdateDisplayName はサインイン中ユーザーの表示名を更新する。
func (c *ToolkitClient) UpdateDisplayName(ctx context.Context, displayName string) (*AuthorityUser, error) {
	c.mu.Lock()
	current := copyUser(c.current)
	idToken := c.idToken
	c.mu.Unlock()

	if current == nil {
		return nil, &AuthorityError{Code: CodeNoCurrentUser, Message: "no user is signed in"}
	}

	var resp toolkitUpdateResponse
	err := c.post(ctx, "accounts:update", map[string]any{
		"idToken":           idToken,
		"displayName":       displayName,
		"returnSecureToken": false,
	}, &resp)
	if err != nil {
		return nil, err
	}

	current.DisplayName = resp.DisplayName
	if current.DisplayName == "" {
		current.DisplayName = displayName
	}

	c.mu.Lock()
	// 通信中にサインアウトや別ユーザーへの切り替えがあった場合は状態を上書きしない
	if c.current != nil && c.current.UID == current.UID {
		c.current = copyUser(current)
		c.listeners.broadcast(current)
	}
	c.mu.Unlock()

	return current, nil
}

// SendPasswordReset はパスワード再設定メールを送信する。
func (c *ToolkitClient) SendPasswordReset(ctx context.Context, email string) error {
	return c.post(ctx, "accounts:sendOobCode", map[string]any{
		"requestType": "PASSWORD_RESET",
		"email":       email,
	}, nil)
}

// CurrentUser はサインイン中ユーザーを返す。未サインインならnil。
func (c *ToolkitClient) CurrentUser() *AuthorityUser {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyUser(c.current)
}

// Subscribe は認証状態の変化を購読する。
func (c *ToolkitClient) Subscribe(fn func(*AuthorityUser)) func() {
	c.mu.Lock()
	l := c.listeners.add(fn)
	l.enqueue(c.current)
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { c.listeners.remove(l) })
	}
}

func (c *ToolkitClient) setCurrent(u *AuthorityUser, idToken string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = copyUser(u)
	c.idToken = idToken
	c.listeners.broadcast(u)
}

// post はエンドポイントにJSONをPOSTし、成功時はoutにデコードする。
func (c *ToolkitClient) post(ctx context.Context, endpoint string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", endpoint, err)
	}

	reqURL := c.config.BaseURL + "/" + endpoint + "?key=" + url.QueryEscape(c.config.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return &AuthorityError{Code: CodeNetworkFailed, Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &AuthorityError{Code: CodeNetworkFailed, Message: err.Error()}
	}

	if resp.StatusCode != http.StatusOK {
		return parseToolkitError(resp.StatusCode, respBody)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", endpoint, err)
	}
	return nil
}

// parseToolkitError はREST APIのエラーメッセージを認証基盤のエラーコードに変換する。
// メッセージは "WEAK_PASSWORD : Password should be at least 6 characters" の形式をとることがある。
func parseToolkitError(status int, body []byte) error {
	var er toolkitErrorResponse
	if err := json.Unmarshal(body, &er); err != nil || er.Error.Message == "" {
		return &AuthorityError{Code: CodeInternal, Message: fmt.Sprintf("status %d", status)}
	}

	reason, detail, _ := strings.Cut(er.Error.Message, ":")
	reason = strings.TrimSpace(reason)
	detail = strings.TrimSpace(detail)

	code := CodeInternal
	switch reason {
	case "EMAIL_EXISTS":
		code = CodeEmailAlreadyInUse
	case "INVALID_EMAIL", "MISSING_EMAIL":
		code = CodeInvalidEmail
	case "WEAK_PASSWORD":
		code = CodeWeakPassword
	case "EMAIL_NOT_FOUND", "USER_NOT_FOUND":
		code = CodeUserNotFound
	case "INVALID_PASSWORD":
		code = CodeWrongPassword
	case "INVALID_LOGIN_CREDENTIALS", "INVALID_ID_TOKEN", "CREDENTIAL_TOO_OLD_LOGIN_AGAIN":
		code = CodeInvalidCredential
	}

	msg := reason
	if detail != "" {
		msg = reason + ": " + detail
	}
	return &AuthorityError{Code: code, Message: msg}
}

// compile-time interface check
var _ Authority = (*ToolkitClient)(nil)

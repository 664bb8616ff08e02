package security

import (
	"net/http"
	"time"

	"github.com/doyensec/safeurl"
)

// allowedSchemes は外部リクエストで許可されるURLスキーム。
var allowedSchemes = []string{"http", "https"}

// NewOutboundClient は外部プロバイダ呼び出し用のHTTPクライアントを生成する。
// safeurlライブラリにより、プライベートIP、ループバック、リンクローカル、
// メタデータIPへのリクエストが自動的にブロックされる。
// safeurlはnet.DialerのControlフックでDNS解決後のIPアドレスを検証するため、
// DNS再バインディング攻撃にも対応している。
// timeoutはリクエスト全体のタイムアウトとして適用される。
func NewOutboundClient(timeout time.Duration) *http.Client {
	config := safeurl.GetConfigBuilder().
		SetTimeout(timeout).
		SetAllowedSchemes(allowedSchemes...).
		SetAllowedPorts(80, 443).
		Build()

	wrappedClient := safeurl.Client(config)
	return wrappedClient.Client
}

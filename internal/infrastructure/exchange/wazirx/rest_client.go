package wazirx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"cryptofeed/internal/application/port"
	"cryptofeed/internal/domain"
	"cryptofeed/internal/domain/model"
)

const (
	ExchangeName   = "WAZIRX"
	DefaultBaseURL = "https://api.wazirx.com"
	tickersPath    = "/api/v2/tickers"
)

// Client WazirX 公共行情客户端
type Client struct {
	url    string
	client *http.Client
}

// NewClient 创建行情客户端，url 为空时使用公共接口
func NewClient(url string, timeout time.Duration) *Client {
	url = strings.TrimSpace(url)
	if url == "" {
		url = DefaultBaseURL + tickersPath
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		url: url,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) Name() string { return ExchangeName }

// FetchTickers 发起一次 GET，按响应中键的顺序返回行情
// 所有失败都包装 domain.ErrSourceUnavailable
func (c *Client) FetchTickers(ctx context.Context) ([]model.RawTicker, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: wazirx api error: %d %s", domain.ErrSourceUnavailable, resp.StatusCode, string(body))
	}

	tickers, err := decodeTickers(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: decode tickers: %v", domain.ErrSourceUnavailable, err)
	}
	return tickers, nil
}

type tickerResp struct {
	BaseUnit  flexString `json:"base_unit"`
	QuoteUnit flexString `json:"quote_unit"`
	Low       flexString `json:"low"`
	High      flexString `json:"high"`
	Last      flexString `json:"last"`
	Type      flexString `json:"type"`
	Open      flexString `json:"open"`
	Volume    flexString `json:"volume"`
	Sell      flexString `json:"sell"`
	Buy       flexString `json:"buy"`
	At        flexString `json:"at"`
	Name      flexString `json:"name"`
}

func (t tickerResp) toRaw(symbol string) model.RawTicker {
	return model.RawTicker{
		Symbol:    symbol,
		Name:      string(t.Name),
		BaseUnit:  string(t.BaseUnit),
		QuoteUnit: string(t.QuoteUnit),
		Type:      string(t.Type),
		Last:      string(t.Last),
		Buy:       string(t.Buy),
		Sell:      string(t.Sell),
		Volume:    string(t.Volume),
		Low:       string(t.Low),
		High:      string(t.High),
		Open:      string(t.Open),
		At:        parseAt(string(t.At)),
	}
}

// decodeTickers 流式解析顶层对象以保留键顺序
// 无法解析的条目保留位置但字段为空，之后按单行失败处理
func decodeTickers(r io.Reader) ([]model.RawTicker, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected json object, got %v", tok)
	}

	var out []model.RawTicker
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		symbol, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected key %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("ticker %s: %w", symbol, err)
		}

		var item tickerResp
		if err := json.Unmarshal(raw, &item); err != nil {
			log.Warn().Err(err).Str("symbol", symbol).Msg("wazirx: malformed ticker entry")
			out = append(out, model.RawTicker{Symbol: symbol})
			continue
		}
		out = append(out, item.toRaw(symbol))
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return out, nil
}

// parseAt 解析时间戳，无法识别时返回 0
func parseAt(s string) int64 {
	if s == "" {
		return 0
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(f)
	}
	return 0
}

// flexString 接受任意 JSON 值：字符串去引号，数字保留原文，null 和复合值为空
// 是否可用由行解析决定
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	b = bytesTrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*s = ""
		return nil
	}
	switch b[0] {
	case '"':
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	case '{', '[':
		*s = ""
		return nil
	default:
		*s = flexString(b)
		return nil
	}
}

func bytesTrimSpace(b []byte) []byte {
	i := 0
	j := len(b) - 1
	for i <= j && (b[i] == ' ' || b[i] == '\n' || b[i] == '\r' || b[i] == '\t') {
		i++
	}
	for j >= i && (b[j] == ' ' || b[j] == '\n' || b[j] == '\r' || b[j] == '\t') {
		j--
	}
	return b[i : j+1]
}

var _ port.TickerSource = (*Client)(nil)

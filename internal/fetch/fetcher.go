package fetch

import (
	"context"
	"io"
	"mime"
	"net/http"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/transform"
)

// Outcome 标记一次抓取的显式结果，调用方可据此决定降级或上抛。
type Outcome string

const (
	// OutcomeContent 表示 HTTP 200 并成功取得正文。
	OutcomeContent Outcome = "content"
	// OutcomeEmpty 表示远端返回非 200，按约定视为空内容。
	OutcomeEmpty Outcome = "empty"
	// OutcomeError 表示传输层失败，Content 为空且 Err 非空。
	OutcomeError Outcome = "error"
)

// Result 是单个路径的抓取结果，首次结果在 Fetcher 生命周期内被记住。
type Result struct {
	Outcome    Outcome
	Content    string
	StatusCode int
	Err        error
}

// Options 描述 Fetcher 的远端地址与转发凭证。
type Options struct {
	// Host 形如 http://assets.internal:8080，BasePath 追加在 Host 之后。
	Host     string
	BasePath string
	// Authorization 是入站请求携带的凭证原文，非空时透传到出站请求。
	// 凭证只来源于入站请求，与出站请求自身无关。
	Authorization string
	Logger        *logrus.Logger
}

// Fetcher 为单次包构建提供带结果缓存的远端抓取。
// 缓存以互斥锁保护，同一路径的第二次 Fetch 不会发起出站请求。
type Fetcher struct {
	client *http.Client
	opts   Options

	mu      sync.Mutex
	results map[string]Result
}

// NewFetcher 构造 Fetcher；client 由 NewClient 统一提供。
func NewFetcher(client *http.Client, opts Options) *Fetcher {
	return &Fetcher{
		client:  client,
		opts:    opts,
		results: make(map[string]Result),
	}
}

// Fetch 抓取单个路径的内容。结果语义：
// 200 → OutcomeContent；非 200 → OutcomeEmpty；传输失败 → OutcomeError（记日志）。
func (f *Fetcher) Fetch(ctx context.Context, path string) Result {
	f.mu.Lock()
	defer f.mu.Unlock()

	if cached, ok := f.results[path]; ok {
		return cached
	}

	result := f.fetchRemote(ctx, path)
	f.results[path] = result
	return result
}

// Contents 依序抓取全部路径并以换行拼接；error/empty 结果降级为空串。
// 需要区分失败原因的调用方应逐个检查 Fetch 的 Result。
func (f *Fetcher) Contents(ctx context.Context, paths []string) string {
	parts := make([]string, len(paths))
	for i, path := range paths {
		parts[i] = f.Fetch(ctx, path).Content
	}
	return strings.Join(parts, "\n")
}

func (f *Fetcher) fetchRemote(ctx context.Context, path string) Result {
	url := f.opts.Host + f.opts.BasePath + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		f.logFailure(path, url, err)
		return Result{Outcome: OutcomeError, Err: err}
	}
	if f.opts.Authorization != "" {
		req.Header.Set("Authorization", f.opts.Authorization)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		f.logFailure(path, url, err)
		return Result{Outcome: OutcomeError, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return Result{Outcome: OutcomeEmpty, StatusCode: resp.StatusCode}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		f.logFailure(path, url, err)
		return Result{Outcome: OutcomeError, StatusCode: resp.StatusCode, Err: err}
	}

	content := normalizeBody(raw, resp.Header.Get("Content-Type"))
	return Result{Outcome: OutcomeContent, StatusCode: resp.StatusCode, Content: content}
}

func (f *Fetcher) logFailure(path, url string, err error) {
	if f.opts.Logger == nil {
		return
	}
	f.opts.Logger.WithError(err).WithFields(logrus.Fields{
		"action": "remote_fetch",
		"path":   path,
		"url":    url,
	}).Warn("remote_fetch_failed")
}

// normalizeBody 按响应声明的 charset 将正文转码为 UTF-8；
// 无声明或转码失败时按原文返回。
func normalizeBody(raw []byte, contentType string) string {
	label := charsetLabel(contentType)
	if label == "" || strings.EqualFold(label, "utf-8") {
		return string(raw)
	}

	enc, _ := charset.Lookup(label)
	if enc == nil {
		return string(raw)
	}

	decoded, _, err := transform.Bytes(enc.NewDecoder(), raw)
	if err != nil {
		return string(raw)
	}
	return string(decoded)
}

func charsetLabel(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return params["charset"]
}

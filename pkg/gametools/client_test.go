package gametools_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/bf4stats/api/pkg/gametools"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type upstream struct {
	mu       sync.Mutex
	requests []*http.Request
	status   int
	body     string
}

func (u *upstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u.mu.Lock()
	u.requests = append(u.requests, r.Clone(context.Background()))
	status, body := u.status, u.body
	u.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func (u *upstream) lastRequest() *http.Request {
	u.mu.Lock()
	defer u.mu.Unlock()
	Expect(u.requests).ToNot(BeEmpty())
	return u.requests[len(u.requests)-1]
}

var _ = Describe("RealClient", func() {
	var (
		up     *upstream
		server *httptest.Server
		client *gametools.RealClient
	)

	BeforeEach(func() {
		up = &upstream{status: http.StatusOK, body: `{"userName":"Player1","kills":1234}`}
		server = httptest.NewServer(up)
		client = gametools.NewClient(server.URL+"/bf4", time.Second)
	})

	AfterEach(func() {
		server.Close()
	})

	Describe("URL construction", func() {
		It("builds the stats URL with skip_battlelog", func() {
			c := gametools.NewClient("", 0)
			Expect(c.StatsURL("Player1", "pc")).To(Equal(
				"https://api.gametools.network/bf4/stats/?name=Player1&platform=pc&skip_battlelog=false",
			))
		})

		It("builds the all-data URL", func() {
			c := gametools.NewClient("", 0)
			Expect(c.AllDataURL("Player1", "ps4")).To(Equal(
				"https://api.gametools.network/bf4/all/?name=Player1&platform=ps4",
			))
		})

		It("builds the history URL", func() {
			c := gametools.NewClient("", 0)
			Expect(c.HistoryURL("Player1", "xboxone")).To(Equal(
				"https://api.gametools.network/bf4/statsarray/?name=Player1&platform=xboxone",
			))
		})

		It("trims a trailing slash from the base URL", func() {
			c := gametools.NewClient("http://example.test/bf4/", 0)
			Expect(c.AllDataURL("a", "pc")).To(Equal("http://example.test/bf4/all/?name=a&platform=pc"))
		})

		It("percent-encodes reserved characters in the name", func() {
			Expect(gametools.EscapeName("John Doe")).To(Equal("John%20Doe"))
			Expect(gametools.EscapeName("a&platform=ps4")).To(Equal("a%26platform%3Dps4"))
			Expect(gametools.EscapeName("x/y?z#w+v")).To(Equal("x%2Fy%3Fz%23w%2Bv"))
		})

		It("forwards the platform verbatim", func() {
			c := gametools.NewClient("", 0)
			Expect(c.AllDataURL("a", "PC")).To(HaveSuffix("&platform=PC"))
		})
	})

	Describe("Stats", func() {
		It("returns the upstream body unchanged", func() {
			data, err := client.Stats(context.Background(), "Player1", "pc")
			Expect(err).ToNot(HaveOccurred())
			Expect(string(data)).To(Equal(`{"userName":"Player1","kills":1234}`))

			req := up.lastRequest()
			Expect(req.URL.Path).To(Equal("/bf4/stats/"))
			Expect(req.URL.Query().Get("name")).To(Equal("Player1"))
			Expect(req.URL.Query().Get("platform")).To(Equal("pc"))
			Expect(req.URL.Query().Get("skip_battlelog")).To(Equal("false"))
			Expect(req.Header.Get("Accept")).To(Equal("application/json"))
		})

		It("sends names with reserved characters percent-encoded", func() {
			_, err := client.Stats(context.Background(), "Mr Smith&Co", "pc")
			Expect(err).ToNot(HaveOccurred())

			req := up.lastRequest()
			Expect(req.URL.RawQuery).To(HavePrefix("name=Mr%20Smith%26Co&platform=pc"))
			q, err := url.ParseQuery(req.URL.RawQuery)
			Expect(err).ToNot(HaveOccurred())
			Expect(q.Get("name")).To(Equal("Mr Smith&Co"))
		})
	})

	Describe("AllData", func() {
		It("hits /all/ without skip_battlelog", func() {
			_, err := client.AllData(context.Background(), "Player1", "pc")
			Expect(err).ToNot(HaveOccurred())

			req := up.lastRequest()
			Expect(req.URL.Path).To(Equal("/bf4/all/"))
			Expect(req.URL.Query().Has("skip_battlelog")).To(BeFalse())
		})
	})

	Describe("History", func() {
		It("hits /statsarray/", func() {
			up.body = `[{"kills":1},{"kills":2}]`
			data, err := client.History(context.Background(), "Player1", "pc")
			Expect(err).ToNot(HaveOccurred())
			Expect(string(data)).To(Equal(`[{"kills":1},{"kills":2}]`))
			Expect(up.lastRequest().URL.Path).To(Equal("/bf4/statsarray/"))
		})
	})

	Describe("outcome classification", func() {
		It("maps an upstream 404 to ErrNotFound", func() {
			up.status = http.StatusNotFound
			up.body = `{"errors":["player not found"]}`

			data, err := client.Stats(context.Background(), "ghost", "pc")
			Expect(data).To(BeNil())
			Expect(errors.Is(err, gametools.ErrNotFound)).To(BeTrue())
		})

		It("returns a StatusError for other upstream failures", func() {
			up.status = http.StatusBadGateway

			_, err := client.AllData(context.Background(), "Player1", "pc")
			var se *gametools.StatusError
			Expect(errors.As(err, &se)).To(BeTrue())
			Expect(se.StatusCode).To(Equal(http.StatusBadGateway))
		})

		It("rejects a body that is not JSON", func() {
			up.body = "<html>oops</html>"

			_, err := client.History(context.Background(), "Player1", "pc")
			Expect(errors.Is(err, gametools.ErrInvalidBody)).To(BeTrue())
		})

		It("returns an error when the upstream is unreachable", func() {
			dead := httptest.NewServer(http.NotFoundHandler())
			deadURL := dead.URL
			dead.Close()

			c := gametools.NewClient(deadURL, time.Second)
			_, err := c.Stats(context.Background(), "Player1", "pc")
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, gametools.ErrNotFound)).To(BeFalse())
		})

		It("gives up after the configured timeout", func() {
			release := make(chan struct{})
			slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-release:
				case <-r.Context().Done():
				}
			}))
			defer slow.Close()
			defer close(release)

			c := gametools.NewClient(slow.URL, 50*time.Millisecond)
			start := time.Now()
			_, err := c.Stats(context.Background(), "Player1", "pc")
			Expect(err).To(HaveOccurred())
			Expect(time.Since(start)).To(BeNumerically("<", 2*time.Second))
		})
	})

	Describe("WithHTTPClient", func() {
		It("routes requests through the supplied Doer", func() {
			d := &recordingDoer{}
			c := gametools.NewClient("http://example.test/bf4", 0, gametools.WithHTTPClient(d))

			_, err := c.Stats(context.Background(), "Player1", "pc")
			Expect(err).ToNot(HaveOccurred())
			Expect(d.urls).To(ConsistOf("http://example.test/bf4/stats/?name=Player1&platform=pc&skip_battlelog=false"))
		})
	})
})

var _ = Describe("IsEmpty", func() {
	DescribeTable("classifies payloads",
		func(payload string, want bool) {
			Expect(gametools.IsEmpty(json.RawMessage(payload))).To(Equal(want))
		},
		Entry("no bytes", "", true),
		Entry("null", "null", true),
		Entry("empty object", "{}", true),
		Entry("empty array", "[]", true),
		Entry("empty string", `""`, true),
		Entry("zero", "0", true),
		Entry("false", "false", true),
		Entry("object", `{"a":1}`, false),
		Entry("array", `[0]`, false),
		Entry("number", "3", false),
		Entry("true", "true", false),
	)
})

type recordingDoer struct {
	urls []string
}

func (d *recordingDoer) Do(req *http.Request) (*http.Response, error) {
	d.urls = append(d.urls, req.URL.String())
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(`{"ok":true}`)),
	}, nil
}

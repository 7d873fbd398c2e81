package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/franela/goblin"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/mimiro.io/kafka-source-layer/kafka-source-layer/internal/conf"
)

func TestListConnections(t *testing.T) {
	g := goblin.Goblin(t)
	g.Describe("The connection listing", func() {
		g.It("should report name and subscription type per connection", func() {
			handler := &connectionHandler{
				logger: zap.NewNop().Sugar(),
				mngr: &conf.ConfigurationManager{
					Sources: &conf.SourcesConfig{
						Connections: []conf.ConnectionConfig{
							{
								Name: "orders",
								Source: &conf.SourceDocument{
									Subscription: &conf.SubscriptionConfig{SubscriptionType: "subscribe"},
								},
							},
							{
								Name: "audit",
								Source: &conf.SourceDocument{
									Subscription: &conf.SubscriptionConfig{SubscriptionType: "assign"},
								},
							},
						},
					},
				},
			}

			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/connections", nil)
			rec := httptest.NewRecorder()

			err := handler.listConnections(e.NewContext(req, rec))
			g.Assert(err).IsNil()
			g.Assert(rec.Code).Eql(http.StatusOK)

			var summaries []ConnectionSummary
			g.Assert(json.Unmarshal(rec.Body.Bytes(), &summaries)).IsNil()
			g.Assert(summaries).Eql([]ConnectionSummary{
				{Name: "orders", SubscriptionType: "subscribe"},
				{Name: "audit", SubscriptionType: "assign"},
			})
		})
	})
}

package conf

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path"
	"testing"

	"go.uber.org/zap"
)

func TestLoadFile(t *testing.T) {
	cmgr := ConfigurationManager{
		logger: zap.NewNop().Sugar(),
	}
	resourcesTestPath := "../../resources/test"
	overridePath := os.Getenv("RESOURCES_TEST_DIR")
	if overridePath != "" {
		resourcesTestPath = overridePath
	}
	_, err := cmgr.loadFile("file://" + path.Join(resourcesTestPath, "/test-config.json"))
	if err != nil {
		t.FailNow()
	}
}

func TestLoadUrl(t *testing.T) {
	srv := serverMock()
	defer srv.Close()

	cmgr := ConfigurationManager{
		logger: zap.NewNop().Sugar(),
	}

	_, err := cmgr.loadURL(fmt.Sprintf("%s/test/config.json", srv.URL))
	if err != nil {
		t.Error(err)
		t.FailNow()
	}
}

func TestParse(t *testing.T) {
	cmgr := ConfigurationManager{
		logger: zap.NewNop().Sugar(),
	}
	resourcesTestPath := "../../resources/test"
	overridePath := os.Getenv("RESOURCES_TEST_DIR")
	if overridePath != "" {
		resourcesTestPath = overridePath
	}
	res, err := cmgr.loadFile("file://" + path.Join(resourcesTestPath, "/test-config.json"))
	if err != nil {
		t.FailNow()
	}

	config, err := cmgr.parse(res)
	if err != nil {
		t.FailNow()
	}

	if config.Connections[0].Name != "json-subscribe" {
		t.Errorf("%s != json-subscribe", config.Connections[0].Name)
	}
	if config.Connections[0].Source.Subscription.TopicPattern != "events-.*" {
		t.Errorf("%s != events-.*", config.Connections[0].Source.Subscription.TopicPattern)
	}
}

func TestRegister(t *testing.T) {
	cmgr := ConfigurationManager{
		logger:  zap.NewNop().Sugar(),
		Sources: &SourcesConfig{},
	}

	cmgr.Register(ConnectionConfig{Name: "orders", Source: &SourceDocument{BootstrapServers: "a:9092"}})
	cmgr.Register(ConnectionConfig{Name: "orders", Source: &SourceDocument{BootstrapServers: "b:9092"}})

	if len(cmgr.Connections()) != 1 {
		t.Errorf("expected 1 connection, got %d", len(cmgr.Connections()))
	}
	if cmgr.Connection("orders").Source.BootstrapServers != "b:9092" {
		t.Error("expected the second registration to replace the first")
	}
}

func serverMock() *httptest.Server {
	handler := http.NewServeMux()
	handler.HandleFunc("/test/config.json", configMock)

	srv := httptest.NewServer(handler)

	return srv
}

func configMock(w http.ResponseWriter, r *http.Request) {
	cmgr := ConfigurationManager{
		logger: zap.NewNop().Sugar(),
	}
	resourcesTestPath := "../../resources/test"
	overridePath := os.Getenv("RESOURCES_TEST_DIR")
	if overridePath != "" {
		resourcesTestPath = overridePath
	}
	res, _ := cmgr.loadFile("file://" + path.Join(resourcesTestPath, "/test-config.json"))
	_, _ = w.Write(res)
}

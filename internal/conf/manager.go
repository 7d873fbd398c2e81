package conf

import (
	"crypto/md5"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/bamzi/jobrunner"
	"github.com/gojektech/heimdall/v6/httpclient"
	"go.uber.org/zap"
)

type ConfigurationManager struct {
	configLocation      string
	refreshInterval     string
	configToken         string
	Sources             *SourcesConfig
	logger              *zap.SugaredLogger
	State               State
	lock                sync.RWMutex
	updateListenerFuncs []func(digest [16]byte)
}

type State struct {
	Timestamp int64
	Digest    [16]byte
}

func NewConfigurationManager(env *Env) *ConfigurationManager {
	config := &ConfigurationManager{
		configLocation:  env.ConfigLocation,
		refreshInterval: env.RefreshInterval,
		configToken:     env.ConfigToken,
		Sources:         &SourcesConfig{},
		logger:          env.Logger.Named("configuration"),
		State: State{
			Timestamp: time.Now().Unix(),
		},
	}
	config.Sources = config.Init()

	return config
}

func (conf *ConfigurationManager) Init() *SourcesConfig {
	conf.logger.Infof("Starting the ConfigurationManager with refresh %s\n", conf.refreshInterval)
	config := conf.load()
	conf.logger.Info("Done loading the connections")
	jobrunner.Start()
	err := jobrunner.Schedule(conf.refreshInterval, conf)
	if err != nil {
		conf.logger.Warn("Could not start configuration reload job")
	}
	return config
}

func (conf *ConfigurationManager) Run() {
	conf.load()
}

// Connection looks up a named connection in the current connection set.
func (conf *ConfigurationManager) Connection(name string) *ConnectionConfig {
	conf.lock.RLock()
	defer conf.lock.RUnlock()
	for _, c := range conf.Sources.Connections {
		if c.Name == name {
			return &c
		}
	}
	return nil
}

// Connections returns a snapshot of the current connection set.
func (conf *ConfigurationManager) Connections() []ConnectionConfig {
	conf.lock.RLock()
	defer conf.lock.RUnlock()
	snapshot := make([]ConnectionConfig, len(conf.Sources.Connections))
	copy(snapshot, conf.Sources.Connections)
	return snapshot
}

// Register adds a connection at runtime, replacing any existing connection
// with the same name.
func (conf *ConfigurationManager) Register(connection ConnectionConfig) {
	conf.lock.Lock()
	defer conf.lock.Unlock()
	for i, c := range conf.Sources.Connections {
		if c.Name == connection.Name {
			conf.Sources.Connections[i] = connection
			conf.logger.Infof("Replaced connection %s", connection.Name)
			return
		}
	}
	conf.Sources.Connections = append(conf.Sources.Connections, connection)
	conf.logger.Infof("Registered connection %s", connection.Name)
}

func (conf *ConfigurationManager) load() *SourcesConfig {
	var configContent []byte
	var err error
	if strings.Index(conf.configLocation, "file://") == 0 {
		configContent, err = conf.loadFile(conf.configLocation)
	} else if strings.Index(conf.configLocation, "http") == 0 {
		configContent, err = conf.loadURL(conf.configLocation)
		if err != nil {
			conf.logger.Warn("Unable to fetch connections. Error is: "+
				err.Error()+". Please check location: "+conf.configLocation, err)
			return nil
		}
	} else {
		conf.logger.Errorf("Config file location not supported: %s \n", conf.configLocation)
		configContent, _ = conf.loadFile("file://resources/default-config.json")
	}
	if err != nil {
		// means no file found
		conf.logger.Infof("Could not find %s", conf.configLocation)
	}

	if configContent == nil {
		// again means not found or no content
		conf.logger.Infof("No values read for %s", conf.configLocation)
		configContent = make([]byte, 0)
	}

	state := State{
		Timestamp: time.Now().Unix(),
		Digest:    md5.Sum(configContent),
	}

	if state.Digest != conf.State.Digest {
		config, err := conf.parse(configContent)
		if err != nil {
			conf.logger.Warn("Unable to parse json into connections. Error is: "+err.Error()+". Please check file: "+conf.configLocation, err)
			return nil
		}

		conf.lock.Lock()
		conf.Sources = config
		conf.State = state
		conf.lock.Unlock()
		conf.logger.Info("Updated connections with new values")

		for _, f := range conf.updateListenerFuncs {
			go f(state.Digest)
		}
	}
	return conf.Sources
}

func (conf *ConfigurationManager) loadURL(configEndpoint string) ([]byte, error) {
	timeout := 10000 * time.Millisecond
	client := httpclient.NewClient(httpclient.WithHTTPTimeout(timeout), httpclient.WithRetryCount(3))

	req, err := http.NewRequest("GET", configEndpoint, nil)
	if err != nil {
		return nil, err
	}

	if conf.configToken != "" {
		req.Header.Add("Authorization", "Bearer "+conf.configToken)
	}

	resp, err := client.Do(req)
	if err != nil {
		conf.logger.Error("Unable to open config url: "+configEndpoint, err)
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode == 200 {
		return io.ReadAll(resp.Body)
	} else {
		conf.logger.Infof("Endpoint returned %s", resp.Status)
		return nil, err
	}
}

func (conf *ConfigurationManager) loadFile(location string) ([]byte, error) {
	configFileName := strings.ReplaceAll(location, "file://", "")

	configFile, err := os.Open(configFileName)
	if err != nil {
		conf.logger.Error("Unable to open config file: "+configFileName, err)
		return nil, err
	}
	defer configFile.Close()
	return io.ReadAll(configFile)
}

func (conf *ConfigurationManager) parse(config []byte) (*SourcesConfig, error) {
	configuration := &SourcesConfig{}
	err := json.Unmarshal(config, configuration)
	return configuration, err
}

func (conf *ConfigurationManager) AddConfigUpdateListener(update func(digest [16]byte)) {
	conf.updateListenerFuncs = append(conf.updateListenerFuncs, update)
}

package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const configFileEnvName = "INVENTORY_CONFIG_FILE"

type consumers struct {
	ChangeEventsGroup  string `mapstructure:"change_events_group"`
	SnapshotTableGroup string `mapstructure:"snapshot_table_group"`
}

type topics struct {
	ChangeEvents string `mapstructure:"change_events"`
	Alerts       string `mapstructure:"alerts"`
}

type broker struct {
	SeedBrokers        []string  `mapstructure:"seed_brokers"`
	SchemaRegistryURLs []string  `mapstructure:"schema_registry_urls"`
	Topics             topics    `mapstructure:"topics"`
	Consumers          consumers `mapstructure:"consumers"`
}

type hdfs struct {
	NamenodeAddr string `mapstructure:"namenode_addr"`
	ReportsDir   string `mapstructure:"reports_dir"`
}

type inventory struct {
	LowStockThreshold int           `mapstructure:"low_stock_threshold"`
	CooldownWindow    time.Duration `mapstructure:"cooldown_window"`
	ReportInterval    time.Duration `mapstructure:"report_interval"`
}

type Config struct {
	LogLevel       slog.Level `mapstructure:"log_level"`
	HTTPServerAddr string     `mapstructure:"http_server_addr"`
	SQLDB          string     `mapstructure:"sql_db"`
	HDFS           hdfs       `mapstructure:"hdfs"`
	Inventory      inventory  `mapstructure:"inventory"`
	Broker         broker     `mapstructure:"broker"`
}

func Load() Config {
	viper.SetConfigFile(getConfigFilepath())

	err := viper.ReadInConfig()
	if err != nil {
		die(err)
	}

	var cfg Config
	err = viper.UnmarshalExact(&cfg)
	if err != nil {
		die(err)
	}

	return cfg
}

func getConfigFilepath() string {
	cmdLine := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	arg := cmdLine.String("config", "/config.yaml", "config file")
	_ = cmdLine.Parse(os.Args[1:])
	env, ok := os.LookupEnv(configFileEnvName)
	if ok {
		return env
	}
	return *arg
}

func die(err error) {
	fmt.Printf("failed to load config file: %v\n", err)
	os.Exit(2)
}

func (c Config) Print() {
	tamplate := `
	General:
	LogLevel=%q
	HTTPServerAddr=%q
	SQLDB=%q

	HDFS:
	NamenodeAddr=%q
	ReportsDir=%q

	Inventory:
	LowStockThreshold=%d
	CooldownWindow=%q
	ReportInterval=%q

	BrokerConfig:
	SeedBrokers=%q
	SchemaRegistryURLs=%q
	Topics:
		ChangeEvents=%q
		Alerts=%q
	Consumers:
		ChangeEventsGroup=%q
		SnapshotTableGroup=%q

`
	fmt.Println("Loaded config:")
	fmt.Printf(
		strings.TrimLeft(tamplate, "\n"),
		c.LogLevel,
		c.HTTPServerAddr,
		c.SQLDB,
		c.HDFS.NamenodeAddr,
		c.HDFS.ReportsDir,
		c.Inventory.LowStockThreshold,
		c.Inventory.CooldownWindow,
		c.Inventory.ReportInterval,
		c.Broker.SeedBrokers,
		c.Broker.SchemaRegistryURLs,
		c.Broker.Topics.ChangeEvents,
		c.Broker.Topics.Alerts,
		c.Broker.Consumers.ChangeEventsGroup,
		c.Broker.Consumers.SnapshotTableGroup,
	)
}

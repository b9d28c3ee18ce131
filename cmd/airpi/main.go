package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/calmh/airpi/bme688"
	"github.com/calmh/airpi/config"
	"github.com/calmh/airpi/export"
	"github.com/calmh/airpi/i2c"
	"github.com/d2r2/go-logger"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

var lg = logger.NewPackageLogger("airpi", logger.InfoLevel)

func main() {
	defer logger.FinalizeLogger()

	cfgFile := flag.String("config", "airpi.yaml", "Configuration file")
	driver := flag.String("driver", "", "I2C driver: sysfs, periph or i2c-dev (overrides config)")
	device := flag.String("device", "", "I2C device (overrides config)")
	promaddr := flag.String("prometheus", "", "Prometheus exporter address (overrides config)")
	jsonOut := flag.Bool("json", false, "Print a JSON line per measurement")
	buffer := flag.Bool("buffer", false, "Use output buffering")
	writeConfig := flag.Bool("write-config", false, "Write the effective configuration and exit")
	flag.Parse()

	cfg, err := config.Load(*cfgFile)
	if err != nil {
		lg.Fatalf("load config: %v", err)
	}
	if *driver != "" {
		cfg.Bus.Driver = *driver
	}
	if *device != "" {
		cfg.Bus.Device = *device
	}
	if *promaddr != "" {
		cfg.Prometheus.Listen = *promaddr
	}
	if *jsonOut {
		cfg.Measurement.JSON = true
	}
	if *writeConfig {
		if err := cfg.Save(*cfgFile); err != nil {
			lg.Fatalf("save config: %v", err)
		}
		return
	}

	if err := setLogLevel(cfg.Log.Level); err != nil {
		lg.Fatalf("set log level: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	dev, err := i2c.Open(cfg.Bus.Driver, cfg.Bus.Device, cfg.Bus.BusNumber)
	if err != nil {
		lg.Fatalf("open I2C device: %v", err)
	}
	defer dev.Close()

	opts, err := cfg.Options()
	if err != nil {
		lg.Fatalf("sensor options: %v", err)
	}
	sensor, err := bme688.New(ctx, dev, opts)
	if err != nil {
		lg.Fatalf("init BME688: %v", err)
	}

	exp := export.NewExporter()
	exp.Register(prometheus.DefaultRegisterer)
	if cfg.Prometheus.Listen != "" {
		go serveHTTP(ctx, cfg.Prometheus.Listen, export.NewRouter(exp, prometheus.DefaultGatherer))
	}

	var pub *export.Publisher
	if cfg.MQTT.Broker != "" {
		pub, err = export.NewPublisher(cfg.MQTT.Broker, cfg.MQTT.ClientID, cfg.MQTT.Topic, cfg.MQTT.QoS)
		if err != nil {
			lg.Fatalf("init MQTT: %v", err)
		}
		defer pub.Close()
	}

	if cfg.Baseline.Enabled {
		cal := &bme688.Calibrator{
			Interval: cfg.Baseline.Interval,
			Progress: exp.SetBaselineProgress,
		}
		lg.Infof("establishing baseline over %d samples, %v apart", bme688.BaselineSamples, cfg.Baseline.Interval)
		if err := sensor.EstablishBaseline(ctx, cal); err != nil {
			if ctx.Err() != nil {
				return
			}
			lg.Fatalf("establish baseline: %v", err)
		}
	}

	out := io.Writer(os.Stdout)
	if *buffer {
		bw := bufio.NewWriter(out)
		defer bw.Flush()
		out = bw
	}

	l := &loop{
		sensor:   sensor,
		session:  uuid.New(),
		decimals: cfg.Measurement.Decimals,
		exporter: exp,
	}
	if cfg.Measurement.JSON {
		l.enc = json.NewEncoder(out)
	}
	if pub != nil {
		l.publisher = pub
	}
	l.run(ctx, cfg.Measurement.Interval)
}

type publisher interface {
	Publish(r export.Record) error
}

type loop struct {
	sensor    *bme688.Sensor
	session   uuid.UUID
	decimals  int
	exporter  *export.Exporter
	enc       *json.Encoder
	publisher publisher
}

// run measures on every tick until ctx is done. A failed cycle is logged
// and the next tick starts a fresh one.
func (l *loop) run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}

		rd, aq, err := l.sensor.AirQuality(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			lg.Errorf("measure: %v", err)
			continue
		}
		l.handle(export.NewRecord(l.session, rd, aq, l.sensor.Baseline(), l.decimals))
	}
}

func (l *loop) handle(rec export.Record) {
	lg.Infof("temperature %.*f °C, humidity %d %%, pressure %d Pa, air quality %d %% (IAQ %d, eCO2 %d ppm)",
		l.decimals, rec.TemperatureC, rec.HumidityPct, rec.PressurePa, rec.IAQPercent, rec.IAQScore, rec.ECO2)
	if !rec.GasReliable {
		lg.Infof("heater not stable, gas term held at baseline")
	}

	l.exporter.Update(rec)
	if l.enc != nil {
		if err := l.enc.Encode(rec); err != nil {
			lg.Errorf("write record: %v", err)
		}
	}
	if l.publisher != nil {
		if err := l.publisher.Publish(rec); err != nil {
			lg.Errorf("publish: %v", err)
		}
	}
}

func serveHTTP(ctx context.Context, addr string, h http.Handler) {
	srv := &http.Server{Addr: addr, Handler: h}
	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	lg.Infof("serving metrics on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		lg.Errorf("serve HTTP: %v", err)
	}
}

// "i2c" is the package logger of github.com/d2r2/go-i2c, which defaults to
// debug.
var packages = []string{"airpi", "bme688", "bus", "export", "i2c"}

func setLogLevel(level string) error {
	var lvl logger.LogLevel
	switch level {
	case "debug":
		lvl = logger.DebugLevel
	case "info":
		lvl = logger.InfoLevel
	case "warn":
		lvl = logger.WarnLevel
	case "error":
		lvl = logger.ErrorLevel
	default:
		return fmt.Errorf("unknown level %q", level)
	}
	for _, pkg := range packages {
		if err := logger.ChangePackageLogLevel(pkg, lvl); err != nil {
			return fmt.Errorf("%s: %w", pkg, err)
		}
	}
	return nil
}

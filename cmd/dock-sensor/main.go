// Command dock-sensor samples the base station's sense lines, publishes flag
// changes to MQTT and Redis, and drives the restart and drive output lines.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/sweeney/dock-sensor/internal/actions"
	"github.com/sweeney/dock-sensor/internal/adc"
	"github.com/sweeney/dock-sensor/internal/diag"
	"github.com/sweeney/dock-sensor/internal/gpio"
	"github.com/sweeney/dock-sensor/internal/logic"
	"github.com/sweeney/dock-sensor/internal/metrics"
	"github.com/sweeney/dock-sensor/internal/mqtt"
	"github.com/sweeney/dock-sensor/internal/redis"
	"github.com/sweeney/dock-sensor/internal/status"
	"github.com/sweeney/dock-sensor/internal/web"
)

type config struct {
	poll        time.Duration
	broker      string
	heartbeat   time.Duration
	adcDevice   string
	channels    adc.Channels
	gpioChip    string
	pinRestart  int
	pinDrive    int
	printState  bool
	httpAddr    string
	redisAddr   string
	debug       bool
	debugSerial string
	debugBaud   int
}

func main() {
	var cfg config
	var channels string
	flag.DurationVar(&cfg.poll, "poll", 100*time.Millisecond, "ADC sampling interval")
	flag.StringVar(&cfg.broker, "broker", "tcp://192.168.1.200:1883", "MQTT broker address")
	flag.DurationVar(&cfg.heartbeat, "heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	flag.StringVar(&cfg.adcDevice, "adc-device", adc.DefaultDevice, "IIO device directory for the ADC")
	flag.StringVar(&channels, "adc-channels", "0,1,2,3", "IIO channel numbers for A3,A2,A1,A0")
	flag.StringVar(&cfg.gpioChip, "gpio-chip", gpio.DefaultChip, "GPIO chip for the output lines")
	flag.IntVar(&cfg.pinRestart, "pin-restart", gpio.DefaultPinRestart, "BCM pin number for the board restart line")
	flag.IntVar(&cfg.pinDrive, "pin-drive", gpio.DefaultPinDrive, "BCM pin number for the go-to-charger line")
	flag.BoolVar(&cfg.printState, "print-state", false, "Sample until ready, print state and exit")
	flag.StringVar(&cfg.httpAddr, "http", ":80", "HTTP status address (empty to disable)")
	flag.StringVar(&cfg.redisAddr, "redis", "", "Redis address for the dock hash (empty to disable)")
	flag.BoolVar(&cfg.debug, "debug", false, "Dump state to stdout every cycle")
	flag.StringVar(&cfg.debugSerial, "debug-serial", "", "Serial port for debug dumps instead of stdout")
	flag.IntVar(&cfg.debugBaud, "debug-baud", 115200, "Baud rate for -debug-serial")

	flag.Parse()

	ch, err := parseChannels(channels)
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
	cfg.channels = ch

	if err := run(cfg); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(cfg config) error {
	// Initialize ADC
	reader, err := adc.NewRealReader(cfg.adcDevice, cfg.channels)
	if err != nil {
		return fmt.Errorf("init adc: %w", err)
	}
	defer reader.Close()

	// Print state mode
	if cfg.printState {
		return printState(reader, os.Stdout, cfg.channels, cfg.poll, time.Sleep)
	}

	// Initialize outputs at their idle levels
	outputs, err := gpio.NewRealOutputs(cfg.gpioChip, cfg.pinRestart, cfg.pinDrive)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer outputs.Close()

	// Initialize MQTT
	publisher, err := mqtt.NewRealPublisher(cfg.broker)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	// Redis is optional; a dead server must not stop the sensor.
	var store flagStore
	if cfg.redisAddr != "" {
		rc, err := redis.New(cfg.redisAddr, "", 0)
		if err != nil {
			log.Printf("redis disabled: %v", err)
		} else {
			defer rc.Close()
			store = rc
		}
	}

	var dumper *diag.Dumper
	if cfg.debug || cfg.debugSerial != "" {
		var w io.Writer = os.Stdout
		if cfg.debugSerial != "" {
			port, err := diag.OpenSerial(cfg.debugSerial, cfg.debugBaud)
			if err != nil {
				return fmt.Errorf("init debug serial: %w", err)
			}
			defer port.Close()
			w = port
		}
		dumper = diag.New(w, channelList(cfg.channels))
	}

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		PollMs:      cfg.poll.Milliseconds(),
		HeartbeatMs: cfg.heartbeat.Milliseconds(),
		Broker:      cfg.broker,
		HTTPAddr:    cfg.httpAddr,
		ADCDevice:   cfg.adcDevice,
		RedisAddr:   cfg.redisAddr,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	// Stop any running sequence and let it restore the lines before the
	// deferred outputs.Close releases them.
	seq := actions.NewSequencer(outputs, actions.Sleep)
	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		seq.Wait()
	}()

	trigger := newTrigger(ctx, seq, tracker, time.Now)
	if err := publisher.Subscribe(commandHandler(trigger)); err != nil {
		log.Printf("failed to subscribe to commands: %v", err)
	}

	// Publish startup event with full status snapshot
	tracker.SetMQTTConnected(publisher.IsConnected())
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	// Start HTTP status server
	if cfg.httpAddr != "" {
		srv := web.New(cfg.httpAddr, tracker, trigger)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.httpAddr)
	}

	log.Printf("started: poll=%v broker=%s heartbeat=%v adc=%s", cfg.poll, cfg.broker, cfg.heartbeat, cfg.adcDevice)

	ticker := time.NewTicker(cfg.poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(reader, publisher, publisher, store, tracker, dumper, cfg.heartbeat, time.Now, ticker.C, sigCh)
}

// flagStore mirrors flags to a local key-value store.
type flagStore interface {
	WriteFlags(f logic.Flags) error
	PublishEvent(e logic.Event) error
}

func runLoop(reader adc.Reader, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, store flagStore, tracker *status.Tracker, dumper *diag.Dumper, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	startTime := now()
	classifier := logic.NewClassifier(startTime)
	storeSynced := false

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if tracker != nil {
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
				snap := tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-tick:
			t := now()
			sample, err := reader.Read()
			if err != nil {
				metrics.ReadErrorsTotal.Inc()
				log.Printf("adc read error: %v", err)
				continue
			}

			events := classifier.Process(logic.Input{
				Sample: sample,
				Time:   t,
			})
			flags := classifier.Flags()
			metrics.ObserveCycle(sample, flags, events)

			for _, event := range events {
				f := event.Flags
				log.Printf("event: %s (wifi=%t shutdown=%t searching=%t charging=%t)",
					event.Type, f.WiFi, f.Shutdown, f.Searching, f.Charging)
				if err := publisher.Publish(event); err != nil {
					metrics.PublishErrorsTotal.WithLabelValues("mqtt").Inc()
					log.Printf("publish error: %v", err)
					// Don't crash on publish failure
				}
				if store != nil {
					if err := store.PublishEvent(event); err != nil {
						metrics.PublishErrorsTotal.WithLabelValues("redis").Inc()
						log.Printf("redis publish error: %v", err)
						storeSynced = false
					}
				}
			}

			// Rewrite the whole hash until a write succeeds, at startup and
			// after any failed per-event update.
			if store != nil && !storeSynced {
				if err := store.WriteFlags(flags); err != nil {
					metrics.PublishErrorsTotal.WithLabelValues("redis").Inc()
					log.Printf("redis write error: %v", err)
				} else {
					storeSynced = true
				}
			}

			if dumper != nil {
				if err := dumper.Dump(flags, sample); err != nil {
					log.Printf("debug dump error: %v", err)
				}
			}

			// Update status tracker for HTTP consumers
			if tracker != nil {
				tracker.Update(flags, sample, classifier.Cycles(), classifier.IsReady(), classifier.EventCountsSnapshot())
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
			}

			// Check for heartbeat
			if hbData := classifier.CheckHeartbeat(t, heartbeat); hbData != nil {
				c := hbData.Counts
				log.Printf("heartbeat: uptime=%v cycles=%d charging_start=%d charging_stop=%d board_off=%d board_on=%d",
					hbData.Uptime, hbData.Cycles, c.ChargingStart, c.ChargingStop, c.BoardOff, c.BoardOn)

				hbEvent := mqtt.SystemEvent{
					Timestamp: hbData.Timestamp,
					Event:     "HEARTBEAT",
				}
				if tracker != nil {
					// Refresh network info for heartbeat
					if net := readNetworkInfo(); net != nil {
						tracker.SetNetwork(net)
					}
					snap := tracker.Snapshot()
					hbEvent.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
				}
				if err := publisher.PublishSystem(hbEvent); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}
		}
	}
}

// newTrigger returns a function that starts a sequence in the background and
// records its outcome.
func newTrigger(ctx context.Context, seq *actions.Sequencer, tracker *status.Tracker, now func() time.Time) web.TriggerFunc {
	return func(a actions.Action) error {
		done, err := seq.Start(ctx, a)
		if err != nil {
			if errors.Is(err, actions.ErrBusy) {
				metrics.ActionsTotal.WithLabelValues(string(a), "busy").Inc()
			}
			log.Printf("action: %s rejected: %v", a, err)
			return err
		}
		tracker.SetLastAction(string(a), now(), "started")

		go func() {
			err := <-done
			metrics.ObserveAction(string(a), err)
			result := "ok"
			if err != nil {
				result = err.Error()
				log.Printf("action: %s failed: %v", a, err)
			}
			tracker.SetLastAction(string(a), now(), result)
		}()
		return nil
	}
}

// commandHandler maps broker commands onto output sequences.
func commandHandler(trigger web.TriggerFunc) func(mqtt.Command) {
	return func(cmd mqtt.Command) {
		var a actions.Action
		switch cmd.Name {
		case mqtt.CommandRestart:
			a = actions.ActionRestart
		case mqtt.CommandGoToCharger:
			a = actions.ActionGoToCharger
		default:
			log.Printf("ignoring command %q", cmd.Name)
			return
		}
		log.Printf("command: %s", cmd.Name)
		trigger(a)
	}
}

// printState samples until the classifier is ready and dumps the result.
func printState(reader adc.Reader, w io.Writer, ch adc.Channels, poll time.Duration, sleep func(time.Duration)) error {
	classifier := logic.NewClassifier(time.Now())
	var sample logic.Sample
	for !classifier.IsReady() {
		s, err := reader.Read()
		if err != nil {
			return fmt.Errorf("read adc: %w", err)
		}
		sample = s
		classifier.Process(logic.Input{Sample: s, Time: time.Now()})
		if !classifier.IsReady() {
			sleep(poll)
		}
	}
	return diag.New(w, channelList(ch)).Dump(classifier.Flags(), sample)
}

// parseChannels parses "A3,A2,A1,A0" channel numbers.
func parseChannels(s string) (adc.Channels, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return adc.Channels{}, fmt.Errorf("adc-channels: want 4 comma-separated numbers, got %q", s)
	}
	var n [4]int
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || v < 0 {
			return adc.Channels{}, fmt.Errorf("adc-channels: bad channel %q", p)
		}
		n[i] = v
	}
	return adc.Channels{A3: n[0], A2: n[1], A1: n[2], A0: n[3]}, nil
}

func channelList(ch adc.Channels) [4]int {
	return [4]int{ch.A3, ch.A2, ch.A1, ch.A0}
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}

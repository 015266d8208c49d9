/* Copyright 2019 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package main is an MQTT client that matches incoming messages
// against a set of pattern rules and publishes the resulting
// bindings.
//
// Rules come from a YAML file:
//
//   types:
//     Point: [x, y]
//   rules:
//     - name: liker
//       pattern:
//         likes: "?x"
//       publish: matched/liker
//
// With -status-cron, the client periodically publishes counters to
// the status topic on a cron schedule.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/patmalib/patma/pat"
	. "github.com/patmalib/patma/util/testutil"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorhill/cronexpr"
	"github.com/jsccast/yaml"
)

// Rule is one pattern and the topic for its matches.
type Rule struct {
	Name    string      `yaml:"name"`
	Pattern interface{} `yaml:"pattern"`

	// Publish is the topic for bindings from this rule.
	Publish string `yaml:"publish"`

	pattern pat.Pattern
}

// Rules is the rules file.
type Rules struct {
	Types map[string][]string `yaml:"types,omitempty"`
	Rules []*Rule             `yaml:"rules"`
}

func ReadRules(filename string) (*Rules, *pat.Registry, error) {
	bs, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, nil, err
	}
	var rs Rules
	if err = yaml.Unmarshal(bs, &rs); err != nil {
		return nil, nil, err
	}

	reg := pat.NewRegistry()
	for name, fields := range rs.Types {
		reg.Record(name, fields...)
	}

	for _, r := range rs.Rules {
		if r.Name == "" {
			return nil, nil, fmt.Errorf("a rule needs a name")
		}
		if r.Publish == "" {
			return nil, nil, fmt.Errorf("rule '%s' needs a publish topic", r.Name)
		}
		if r.pattern, err = pat.ParsePattern(r.Pattern, reg); err != nil {
			return nil, nil, fmt.Errorf("rule '%s': %s", r.Name, err)
		}
	}

	return &rs, reg, nil
}

func main() {
	var (
		// Follow mosquitto_sub command line args.

		broker    = flag.String("h", "tcp://localhost", "Broker hostname")
		clientId  = flag.String("i", "patmq", "Client id")
		port      = flag.Int("p", 1883, "Broker port")
		keepAlive = flag.Int("k", 10, "Keep-alive in seconds")
		userName  = flag.String("u", "", "Username")
		password  = flag.String("P", "", "Password")
		reconnect = flag.Bool("reconnect", false, "Automatically attempt to reconnect")
		clean     = flag.Bool("c", true, "Clean session")
		quiesce   = flag.Int("quiesce", 100, "Disconnection quiescence (in milliseconds)")

		subTopics = flag.String("t", "patterns/in", "subscription topic(s)")

		rulesFilename = flag.String("rules", "rules.yaml", "rules filename")

		statusTopic = flag.String("status-topic", "patterns/status", "topic for status reports")
		statusCron  = flag.String("status-cron", "", "optional cron schedule for status reports")
	)

	flag.Parse()

	rules, reg, err := ReadRules(*rulesFilename)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("loaded %d rules from %s", len(rules.Rules), *rulesFilename)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var received, matched int64

	mqtt.ERROR = log.New(os.Stderr, "mqtt.error", 0)

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("%s:%d", *broker, *port))
	opts.SetClientID(*clientId)
	opts.SetKeepAlive(time.Second * time.Duration(*keepAlive))
	opts.Username = *userName
	opts.Password = *password
	opts.AutoReconnect = *reconnect
	opts.CleanSession = *clean

	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		log.Printf("MQTT connection lost")
	}

	var client mqtt.Client

	opts.DefaultPublishHandler = func(c mqtt.Client, msg mqtt.Message) {
		atomic.AddInt64(&received, 1)
		payload := msg.Payload()

		dec := json.NewDecoder(bytes.NewReader(payload))
		dec.UseNumber()
		var x interface{}
		if err := dec.Decode(&x); err != nil {
			log.Printf("couldn't JSON-parse payload: %s", payload)
			return
		}
		value, err := pat.ParseValue(x, reg)
		if err != nil {
			log.Printf("bad value %s: %s", payload, err)
			return
		}

		for _, r := range rules.Rules {
			bs, err := pat.Match(r.pattern, value)
			if err != nil {
				log.Printf("rule '%s': %s", r.Name, err)
				continue
			}
			if bs == nil {
				continue
			}
			atomic.AddInt64(&matched, 1)

			out := map[string]interface{}{
				"rule":     r.Name,
				"topic":    msg.Topic(),
				"bindings": map[string]interface{}(bs),
			}
			encoded, err := pat.EncodeValue(out)
			if err != nil {
				log.Printf("rule '%s' encode: %s", r.Name, err)
				continue
			}
			token := client.Publish(r.Publish, 0, false, JS(encoded))
			token.Wait()
			if token.Error() != nil {
				log.Printf("publish error: %s", token.Error())
			}
		}
	}

	client = mqtt.NewClient(opts)

	log.Printf("attempting to connect to broker")
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatal(token.Error())
	}
	log.Printf("connected to broker")

	for _, topic := range strings.Split(*subTopics, ",") {
		if topic == "" {
			continue
		}
		log.Printf("subscribing to %s", topic)
		if t := client.Subscribe(topic, 0, nil); t.Wait() && t.Error() != nil {
			log.Fatal(t.Error())
		}
	}

	if *statusCron != "" {
		c, err := cronexpr.Parse(*statusCron)
		if err != nil {
			log.Fatal(err)
		}
		go func() {
			for {
				next := c.Next(time.Now())
				if next.IsZero() {
					log.Printf("cron schedule has no next time")
					return
				}
				t := time.NewTimer(next.Sub(time.Now()))
				select {
				case <-ctx.Done():
					t.Stop()
					return
				case <-t.C:
				}
				status := map[string]interface{}{
					"received": atomic.LoadInt64(&received),
					"matched":  atomic.LoadInt64(&matched),
					"at":       time.Now().UTC().Format(time.RFC3339Nano),
				}
				token := client.Publish(*statusTopic, 0, false, JS(status))
				token.Wait()
				if token.Error() != nil {
					log.Printf("status publish error: %s", token.Error())
				}
			}
		}()
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs

	log.Printf("disconnecting")
	client.Disconnect(uint(*quiesce))
}

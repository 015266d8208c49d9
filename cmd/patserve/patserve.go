/* Copyright 2018 Comcast Cable Communications Management, LLC
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

// Package main serves pattern matching over WebSockets.
//
// A client sends JSON frames like
//
//   {"match": {"pattern": {"likes": "?x"}, "value": {"likes": "tacos"}}}
//   {"put": {"name": "liker", "pattern": {"likes": "?x"}}}
//   {"match": {"name": "liker", "value": {"likes": "tacos"}}}
//   {"type": {"name": "Point", "fields": ["x", "y"]}}
//   {"list": true}
//
// and gets JSON frames back.  Named patterns live in a BoltDB file,
// so they survive restarts.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	var (
		port     = flag.String("port", ":8080", "port for the HTTP/WebSockets server")
		filename = flag.String("f", "patterns.db", "database filename")
		eval     = flag.Bool("eval", false, "match by compiling and evaluating instead")
		debug    = flag.Bool("d", false, "storage debugging")
	)

	flag.Parse()

	s, err := NewService(*filename, *eval)
	if err != nil {
		log.Fatal(err)
	}
	s.storage.Debug = *debug
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		cancel()
	}()

	if err := s.WebSockets(ctx, *port); err != nil {
		log.Fatal(err)
	}
}

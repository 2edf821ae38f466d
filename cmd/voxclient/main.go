// voxclient: command-line client for the voice relay
// Streams a recorded audio file as one utterance and prints the mentor
// reply, optionally saving the synthesized speech to disk.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/voxrelay/voxrelay/internal/log"
	"github.com/voxrelay/voxrelay/pkg/client"
)

var (
	serverURL = flag.String("server", "ws://localhost:3000/ws/audio", "Relay WebSocket URL")
	audioFile = flag.String("audio", "", "Audio file to send (webm)")
	format    = flag.String("format", "webm", "Audio container format")
	output    = flag.String("output", "", "Save the reply audio to this file")
	timeout   = flag.Duration("timeout", 90*time.Second, "Time to wait for the reply")
)

func main() {
	flag.Parse()
	log.Init(os.Getenv("LOG_LEVEL"))

	if *audioFile == "" {
		fmt.Fprintln(os.Stderr, "usage: voxclient -audio recording.webm [-server ws://...] [-output reply.mp3]")
		os.Exit(1)
	}

	f, err := os.Open(*audioFile)
	if err != nil {
		log.Error("open audio file", "path", *audioFile, "error", err)
		os.Exit(1)
	}
	defer f.Close()

	rec := client.NewReaderRecorder(f, 0)
	c := client.New(*serverURL, rec, *format)

	texts := make(chan string, 1)
	audio := make(chan []byte, 1)
	errs := make(chan string, 1)
	c.OnText = func(content string) { texts <- content }
	c.OnAudio = func(data []byte) { audio <- data }
	c.OnError = func(message string) { errs <- message }

	if err := c.Connect(context.Background()); err != nil {
		log.Error("connect", "url", *serverURL, "error", err)
		os.Exit(1)
	}
	defer c.Close()

	if err := c.StartListening(); err != nil {
		log.Error("start utterance", "error", err)
		os.Exit(1)
	}

	// Let the recorder drain the file before ending the utterance.
	info, err := f.Stat()
	if err == nil {
		chunks := info.Size()/client.DefaultChunkSize + 1
		time.Sleep(time.Duration(chunks+1) * client.DefaultChunkInterval)
	}

	if err := c.StopListening(); err != nil {
		log.Error("end utterance", "error", err)
		os.Exit(1)
	}

	deadline := time.After(*timeout)
	var gotText, gotAudio bool
	for !gotText || !gotAudio {
		select {
		case content := <-texts:
			fmt.Println(content)
			gotText = true

		case data := <-audio:
			gotAudio = true
			if *output == "" {
				continue
			}
			if err := os.WriteFile(*output, data, 0o644); err != nil {
				log.Error("save reply audio", "path", *output, "error", err)
				os.Exit(1)
			}
			log.Info("saved reply audio", "path", *output, "bytes", len(data))

		case message := <-errs:
			log.Error("relay error", "message", message)
			os.Exit(1)

		case <-deadline:
			log.Error("timed out waiting for reply")
			os.Exit(1)
		}
	}
}

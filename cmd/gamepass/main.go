// Command gamepass is a small driver around the library: log in with
// credentials from the environment, then resolve a stream or print
// schedule data.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"

	"gamepass-go/pkg/config"
	"gamepass-go/pkg/gamepass"
	"gamepass-go/pkg/logging"
	"gamepass-go/pkg/video"
)

func main() {
	videoID := flag.String("video", "", "resolve streams for this video id")
	live := flag.Bool("live", false, "treat -video as a live event")
	channel := flag.String("channel", "", "resolve streams for a channel (nfl_network, redzone)")
	onAir := flag.Bool("onair", false, "check whether -channel is broadcasting")
	subscription := flag.Bool("subscription", false, "print the account's subscription tag")
	seasons := flag.Bool("seasons", false, "list available seasons")
	flag.Parse()

	cfg := config.Load()
	log := logging.New(cfg.LogLevel, cfg.LogJSON, os.Stderr)
	ctx := context.Background()

	client, err := gamepass.New(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Error("failed to initialize client")
		os.Exit(1)
	}

	username := os.Getenv("GAMEPASS_USER")
	password := os.Getenv("GAMEPASS_PASS")
	if username != "" {
		if !client.Login(ctx, username, password, false) {
			log.Error("login failed")
			os.Exit(1)
		}
	}

	switch {
	case *subscription:
		tag := client.Subscription(ctx)
		if tag == "" {
			fmt.Println("no active subscription")
			return
		}
		fmt.Println(tag)

	case *onAir:
		broadcasting, known := client.OnAir(ctx, video.Channel(*channel))
		if !known {
			fmt.Println("unknown")
			return
		}
		fmt.Println(broadcasting)

	case *channel != "":
		printStreams(client.ChannelStreams(ctx, video.Channel(*channel)))

	case *videoID != "":
		printStreams(client.GameStreams(ctx, *videoID, *live))

	case *seasons:
		list, err := client.Data().Seasons(ctx)
		if err != nil {
			log.WithError(err).Error("failed to list seasons")
			os.Exit(1)
		}
		for _, season := range list {
			fmt.Println(season)
		}

	default:
		flag.Usage()
		os.Exit(2)
	}
}

func printStreams(streams video.StreamMap) {
	if len(streams) == 0 {
		fmt.Println("no streams available")
		return
	}

	formats := make([]string, 0, len(streams))
	for format := range streams {
		formats = append(formats, format)
	}
	sort.Strings(formats)

	for _, format := range formats {
		fmt.Printf("%s\t%s\n", format, streams[format])
	}
}

// Command tail follows the notification topic and prints every event.
// Operational debugging tool; it never writes to the engine.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/segmentio/kafka-go"

	"pairbook/events"
)

func main() {
	brokers := flag.String("brokers", "localhost:9092", "comma-separated kafka brokers")
	topic := flag.String("topic", "pairbook.events", "notification topic")
	group := flag.String("group", "pairbook-tail", "consumer group id")
	flag.Parse()

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: strings.Split(*brokers, ","),
		Topic:   *topic,
		GroupID: *group,
	})
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop
		cancel()
	}()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Fatalf("read failed: %v", err)
		}

		var ev events.Event
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			fmt.Printf("%s\t<undecodable: %v>\n", msg.Key, err)
			continue
		}

		switch ev.Type {
		case events.TypePairRegistered:
			fmt.Printf("%d\t%s\t%s\n", ev.Seq, ev.Type, ev.Pair)
		case events.TypeOrderPlaced:
			fmt.Printf("%d\t%s\t%s\t%s\t%s\tprice=%d qty=%d\n",
				ev.Seq, ev.Type, ev.Pair, ev.Side, ev.Participant, ev.Price, ev.Quantity)
		case events.TypeOrderCancelled:
			fmt.Printf("%d\t%s\t%s\t%s\t%s\n",
				ev.Seq, ev.Type, ev.Pair, ev.Side, ev.Participant)
		default:
			fmt.Printf("%d\t%s\n", ev.Seq, ev.Type)
		}
	}
}

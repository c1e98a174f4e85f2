package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	commandv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/command/v1"
	"github.com/muhammadchandra19/exchange-engine/pkg/logger"
	"github.com/muhammadchandra19/exchange-engine/pkg/redis"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

// sink sends one encoded envelope to the engine's command source.
type sink func(ctx context.Context, key string, value []byte) error

// generateCommands funds every user and then emits count random limit orders
// around basePrice.
func generateCommands(users []string, market string, count int, basePrice, priceSpread float64, funding decimal.Decimal) ([]commandv1.Envelope, error) {
	envelopes := make([]commandv1.Envelope, 0, len(users)+count)

	for _, user := range users {
		env, err := commandv1.NewEnvelope(uuid.NewString(), commandv1.OnRamp, commandv1.OnRampPayload{
			UserID: user,
			Amount: funding,
			TxnID:  uuid.NewString(),
		})
		if err != nil {
			return nil, err
		}
		envelopes = append(envelopes, env)
	}

	for i := 0; i < count; i++ {
		side := "sell"
		price := basePrice + rand.Float64()*priceSpread*0.8
		if rand.Float64() < 0.5 {
			side = "buy"
			price = basePrice - rand.Float64()*priceSpread*0.8
		}
		if price <= 0 {
			price = basePrice
		}

		env, err := commandv1.NewEnvelope(uuid.NewString(), commandv1.CreateOrder, commandv1.CreateOrderPayload{
			Market:   market,
			Price:    decimal.NewFromFloat(price).Round(1),
			Quantity: decimal.NewFromFloat(0.01 + rand.Float64()*9.99).Round(3),
			Side:     side,
			UserID:   users[rand.Intn(len(users))],
		})
		if err != nil {
			return nil, err
		}
		envelopes = append(envelopes, env)
	}

	return envelopes, nil
}

func main() {
	var (
		target      = flag.String("target", "kafka", "Command source to write to: kafka or redis")
		brokers     = flag.String("brokers", "localhost:9092", "Kafka broker addresses (comma-separated)")
		topic       = flag.String("topic", "engine-commands", "Kafka topic name")
		redisAddr   = flag.String("redis", "localhost:6379", "Redis address")
		queue       = flag.String("queue", "messages", "Redis command queue")
		file        = flag.String("file", "", "JSON file with command envelopes (optional, generates commands if not provided)")
		delay       = flag.Duration("delay", 100*time.Millisecond, "Delay between sending commands")
		count       = flag.Int("count", 1000, "Number of orders to generate")
		market      = flag.String("market", "TATA_INR", "Market to trade")
		users       = flag.String("users", "1,2,5", "User ids (comma-separated)")
		funding     = flag.String("funding", "1000000", "On-ramp amount per user")
		basePrice   = flag.Float64("base-price", 1000, "Base price for orders")
		priceSpread = flag.Float64("price-spread", 50, "Price spread range")
	)
	flag.Parse()

	log, err := logger.NewLogger()
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()

	var send sink
	switch *target {
	case "kafka":
		writer := &kafka.Writer{
			Addr:         kafka.TCP(strings.Split(*brokers, ",")...),
			Topic:        *topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
		}
		defer writer.Close()

		send = func(ctx context.Context, key string, value []byte) error {
			return writer.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: value, Time: time.Now()})
		}
	case "redis":
		cfg := redis.DefaultConfig()
		cfg.Addrs = []string{*redisAddr}
		client := redis.NewClient(log, cfg)
		if err := client.Connect(ctx); err != nil {
			log.Error(err, logger.Field{Key: "action", Value: "connect_redis"})
			os.Exit(1)
		}
		defer func() { _ = client.Disconnect(ctx) }()

		send = func(ctx context.Context, _ string, value []byte) error {
			_, err := client.LPush(ctx, *queue, string(value))
			return err
		}
	default:
		log.Error(fmt.Errorf("unknown target %q", *target), logger.Field{Key: "action", Value: "parse_flags"})
		os.Exit(2)
	}

	var envelopes []commandv1.Envelope
	if *file != "" {
		data, err := os.ReadFile(*file)
		if err != nil {
			log.Error(err, logger.Field{Key: "action", Value: "read_file"}, logger.Field{Key: "file", Value: *file})
			os.Exit(1)
		}
		if err := json.Unmarshal(data, &envelopes); err != nil {
			log.Error(err, logger.Field{Key: "action", Value: "parse_file"}, logger.Field{Key: "file", Value: *file})
			os.Exit(1)
		}
	} else {
		amount, err := decimal.NewFromString(*funding)
		if err != nil {
			log.Error(err, logger.Field{Key: "action", Value: "parse_funding"})
			os.Exit(2)
		}
		envelopes, err = generateCommands(strings.Split(*users, ","), *market, *count, *basePrice, *priceSpread, amount)
		if err != nil {
			log.Error(err, logger.Field{Key: "action", Value: "generate_commands"})
			os.Exit(1)
		}
	}

	log.Info("Sending commands",
		logger.Field{Key: "target", Value: *target},
		logger.Field{Key: "commands", Value: len(envelopes)},
		logger.Field{Key: "delay", Value: delay.String()},
	)

	sent := 0
	for i, env := range envelopes {
		value, err := json.Marshal(env)
		if err != nil {
			log.Error(err, logger.Field{Key: "action", Value: "marshal_command"}, logger.Field{Key: "index", Value: i})
			continue
		}

		if err := send(ctx, env.CorrelationID, value); err != nil {
			log.Error(err, logger.Field{Key: "action", Value: "send_command"}, logger.Field{Key: "correlationId", Value: env.CorrelationID})
			continue
		}
		sent++

		if (i+1)%100 == 0 || i == len(envelopes)-1 {
			log.Info("Progress",
				logger.Field{Key: "sent", Value: i + 1},
				logger.Field{Key: "total", Value: len(envelopes)},
				logger.Field{Key: "type", Value: env.Command.Type},
			)
		}

		if i < len(envelopes)-1 {
			time.Sleep(*delay)
		}
	}

	log.Info("Done", logger.Field{Key: "sent", Value: sent}, logger.Field{Key: "failed", Value: len(envelopes) - sent})
}

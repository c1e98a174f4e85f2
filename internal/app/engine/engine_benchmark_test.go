package engine

import (
	"context"
	"testing"

	commandv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/command/v1"
	orderbookv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/orderbook/v1"
	"github.com/shopspring/decimal"
)

// Benchmark test cases structure
type benchmarkTestCase struct {
	name      string
	setupData func(*Engine, *testing.B)
	command   func(i int) (commandv1.Type, any)
}

func setupBenchmarkEngine(b *testing.B) (*testFixture, *Engine) {
	f := setupTestFixture(b)
	e := createTestEngine(b, f)
	for _, user := range []string{"maker", "taker"} {
		credit(b, e, user, "INR", "1000000000000")
		credit(b, e, user, "TATA", "1000000000")
	}
	return f, e
}

func BenchmarkEngine_Process(b *testing.B) {
	testCases := []benchmarkTestCase{
		{
			name:      "resting_limit_orders",
			setupData: func(e *Engine, b *testing.B) {},
			command: func(i int) (commandv1.Type, any) {
				side := orderbookv1.SideBuy
				price := int64(9000 + i%100)
				if i%2 == 0 {
					side, price = orderbookv1.SideSell, int64(11000+i%100)
				}
				return commandv1.CreateOrder, commandv1.CreateOrderPayload{
					Market: market, Price: decimal.NewFromInt(price), Quantity: decimal.NewFromInt(1),
					Side: string(side), UserID: "maker",
				}
			},
		},
		{
			name:      "crossing_orders",
			setupData: func(e *Engine, b *testing.B) {},
			command: func(i int) (commandv1.Type, any) {
				side, user := orderbookv1.SideSell, "maker"
				if i%2 == 1 {
					side, user = orderbookv1.SideBuy, "taker"
				}
				return commandv1.CreateOrder, commandv1.CreateOrderPayload{
					Market: market, Price: decimal.NewFromInt(10000), Quantity: decimal.NewFromInt(1),
					Side: string(side), UserID: user,
				}
			},
		},
		{
			name: "depth_of_deep_book",
			setupData: func(e *Engine, b *testing.B) {
				f := &testFixture{nextOffset: -1000000}
				for i := 0; i < 1000; i++ {
					f.process(b, e, commandv1.CreateOrder, commandv1.CreateOrderPayload{
						Market: market, Price: decimal.NewFromInt(int64(5000 + i)), Quantity: decimal.NewFromInt(1),
						Side: string(orderbookv1.SideBuy), UserID: "maker",
					})
					drain(e)
				}
			},
			command: func(i int) (commandv1.Type, any) {
				return commandv1.GetDepth, commandv1.GetDepthPayload{Market: market}
			},
		},
	}

	for _, tc := range testCases {
		b.Run(tc.name, func(b *testing.B) {
			f, engine := setupBenchmarkEngine(b)
			tc.setupData(engine, b)

			envelopes := make([]commandv1.Envelope, b.N)
			for i := range envelopes {
				typ, payload := tc.command(i)
				envelopes[i] = f.envelope(b, typ, payload)
			}

			ctx := context.Background()
			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				engine.Process(ctx, envelopes[i])
				drain(engine)
			}
		})
	}
}

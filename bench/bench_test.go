package bench

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	amigo "ami-go"
	"ami-go/ami"
	"ami-go/config"
	"ami-go/gonet"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func BenchmarkClient(b *testing.B) {
	workers := 10

	srv := gonet.NewServer(gonet.NewMockHandler(), zerolog.Nop())
	l := gonet.NewListenerForAddr("127.0.0.1:0", srv)
	require.NoError(b, l.Start(context.Background()))
	defer func() { _ = l.Close() }()
	defer srv.DropAll()

	cfg := config.Default()
	cfg.Addr = l.Address().String()
	cli := amigo.NewClientWithLogger(cfg, nil, zerolog.Nop())
	require.NoError(b, cli.Connect(context.Background()))
	defer cli.Close()

	wg := &sync.WaitGroup{}
	wg.Add(workers)
	perWorker := b.N/workers + 1

	b.ResetTimer()
	clientTest := func() {
		defer wg.Done()
		for i := 0; i < perWorker; i++ {
			_, err := cli.Call(context.Background(), ami.Ping())
			if err != nil {
				b.Error(err)
				return
			}
		}
	}

	for i := 1; i <= workers; i++ {
		go clientTest()
	}
	wg.Wait()
}

func BenchmarkFraming(b *testing.B) {
	var stream strings.Builder
	for i := 0; i < 100; i++ {
		fmt.Fprintf(&stream, "Event: Newexten\r\nChannel: SIP/100-%08d\r\nApplication: Dial\r\nAppData: SIP/200,30\r\n\r\n", i)
	}
	data := []byte(stream.String())
	b.SetBytes(int64(len(data)))

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		sp := ami.NewSplitter(0)
		for off := 0; off < len(data); off += 512 {
			end := min(off+512, len(data))
			frames, err := sp.Feed(data[off:end])
			if err != nil {
				b.Fatal(err)
			}
			for _, frame := range frames {
				_ = ami.ParseMessage(string(frame))
			}
		}
	}
}

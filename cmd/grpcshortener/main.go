// Command grpcshortener is a command line client of the pastebin gRPC API.
//
// Usage:
//
//	grpcshortener [-a address] shorten URL
//	grpcshortener [-a address] paste FILE|-
//	grpcshortener [-a address] lookup|raw|stats IDENTIFIER
//	grpcshortener [-a address] ping
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/spf13/pflag"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	pb "github.com/danilovkiri/dk_go_pastebin/internal/api/grpc/pastebinpb"
)

var errUsage = errors.New("usage: grpcshortener [-a address] shorten|paste|lookup|raw|stats|ping [argument]")

func main() {
	address := pflag.StringP("address", "a", "localhost:9516", "gRPC server address")
	timeout := pflag.DurationP("timeout", "t", 10*time.Second, "Request timeout")
	pflag.Parse()

	conn, err := grpc.NewClient(*address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	if err := run(ctx, pb.NewPastebinClient(conn), pflag.Args(), os.Stdin, os.Stdout); err != nil {
		cancel()
		_ = conn.Close()
		log.Fatal(err)
	}
}

func run(ctx context.Context, client pb.PastebinClient, args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	if args[0] == "ping" {
		_, err := client.Ping(ctx, &emptypb.Empty{})
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(stdout, "ok")
		return err
	}
	if len(args) != 2 {
		return errUsage
	}

	var (
		res proto.Message
		err error
	)
	switch args[0] {
	case "shorten":
		res, err = client.Shorten(ctx, wrapperspb.String(args[1]))
	case "paste":
		var data []byte
		data, err = readSource(args[1], stdin)
		if err != nil {
			return err
		}
		res, err = client.Paste(ctx, wrapperspb.Bytes(data))
	case "lookup":
		res, err = client.Lookup(ctx, wrapperspb.String(args[1]))
	case "stats":
		res, err = client.Stats(ctx, wrapperspb.String(args[1]))
	case "raw":
		var raw *wrapperspb.BytesValue
		raw, err = client.Raw(ctx, wrapperspb.String(args[1]))
		if err != nil {
			return err
		}
		_, err = stdout.Write(raw.GetValue())
		return err
	default:
		return errUsage
	}
	if err != nil {
		return err
	}
	out, err := protojson.MarshalOptions{Multiline: true}.Marshal(res)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, string(out))
	return err
}

func readSource(name string, stdin io.Reader) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(name)
}

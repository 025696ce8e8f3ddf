package util

import (
	"fmt"
	"github.com/ValentinKolb/dLVB/rpc/client"
	"github.com/ValentinKolb/dLVB/rpc/common"
	"github.com/ValentinKolb/dLVB/rpc/serializer"
	"github.com/ValentinKolb/dLVB/rpc/transport"
	"github.com/ValentinKolb/dLVB/rpc/transport/http"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"strings"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50

	// EnvPrefix is the prefix of all environment variables read by the cli
	EnvPrefix = "dlvb"
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var line strings.Builder

	for _, word := range strings.Fields(text) {
		if line.Len() > 0 && line.Len()+1+len(word) > Wrap {
			wrappedLines = append(wrappedLines, line.String())
			line.Reset()
		}
		if line.Len() > 0 {
			line.WriteString(" ")
		}
		line.WriteString(word)
	}
	if line.Len() > 0 {
		wrappedLines = append(wrappedLines, line.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// SetupRPCClientFlags adds common RPC connection flags to a command
func SetupRPCClientFlags(cmd *cobra.Command) {
	key := "namespace"
	cmd.PersistentFlags().String(key, "objects", WrapString("The namespace to address"))

	key = "timeout"
	cmd.PersistentFlags().Int(key, 10, WrapString("The timeout in seconds of the client"))

	key = "endpoints"
	cmd.PersistentFlags().String(key, "http://localhost:8080", WrapString("The address of the dLVB server. Multiple endpoints can be specified as a comma-separated list"))

	key = "retries"
	cmd.PersistentFlags().Int(key, 3, WrapString("How many times to retry the request per endpoint"))
}

// InitConfig loads .env files and binds DLVB_ environment variables, for server and client commands
func InitConfig() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// GetClientConfig reads client configuration from viper
func GetClientConfig() common.ClientConfig {
	return common.ClientConfig{
		Endpoints:     strings.Split(viper.GetString("endpoints"), ","),
		TimeoutSecond: viper.GetInt("timeout"),
		RetryCount:    viper.GetInt("retries"),
	}
}

// GetSerializer creates a serializer based on configuration
func GetSerializer() (serializer.IRPCSerializer, error) {
	switch viper.GetString("serializer") {
	case "json":
		return serializer.NewJSONSerializer(), nil
	case "binary":
		return serializer.NewBinarySerializer(), nil
	default:
		return nil, fmt.Errorf("invalid serializer %s", viper.GetString("serializer"))
	}
}

// GetTransport creates a client transport based on configuration
func GetTransport() (transport.IRPCClientTransport, error) {
	switch viper.GetString("transport") {
	case "http":
		return http.NewHttpClientTransport(), nil
	default:
		return nil, fmt.Errorf("invalid transport %s", viper.GetString("transport"))
	}
}

// NewLockClient builds a lock client for the configured namespace
func NewLockClient() (client.ILockClient, error) {
	s, t, err := clientParts()
	if err != nil {
		return nil, err
	}
	return client.NewRPCLockClient(viper.GetString("namespace"), GetClientConfig(), t, s)
}

// NewObjectClient builds an object client for the configured namespace
func NewObjectClient() (client.IObjectClient, error) {
	s, t, err := clientParts()
	if err != nil {
		return nil, err
	}
	return client.NewRPCObjectClient(viper.GetString("namespace"), GetClientConfig(), t, s)
}

func clientParts() (serializer.IRPCSerializer, transport.IRPCClientTransport, error) {
	s, err := GetSerializer()
	if err != nil {
		return nil, nil, err
	}
	t, err := GetTransport()
	if err != nil {
		return nil, nil, err
	}
	return s, t, nil
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}

package utils

import (
	"context"
	"fmt"
	"net"
	"regexp"
	"time"

	"github.com/strathub/strathub-service/log"
)

// WaitForTCP tries to connect to addr until it succeeds or timeout is reached
func WaitForTCP(addr string, timeout time.Duration) error {
	if addr == "" {
		return nil
	}
	timeoutReached := time.Now().Add(timeout)
	start := time.Now()
	log.Debug("wait for tcp connection",
		log.String("addr", addr),
		log.String("timeout", timeout.String()))
	var d net.Dialer
	for time.Now().Before(timeoutReached) {
		conn, err := d.DialContext(context.Background(), "tcp", addr)
		if err == nil {
			conn.Close()

			log.Debug("tcp connection successful",
				log.String("addr", addr),
				log.String("duration", time.Since(start).String()))
			return nil
		}
		time.Sleep(200 * time.Millisecond)
	}
	return fmt.Errorf("%s could not be reached after %v", addr, timeout)
}

// ExtractFromDBURL returns host:port of a postgresql:// url
func ExtractFromDBURL(url string) string {
	param := resolveRegex(
		"^postgres(ql)?://(.*@)?(?P<addr>(?P<host>[^:/]*?)(:(?P<port>\\d+))?)/.*", url)
	if len(param) == 0 || param["addr"] == "" {
		return ""
	}
	if port, ok := param["port"]; ok && port != "" {
		return param["addr"]
	}
	return fmt.Sprintf("%s:5432", param["addr"])
}

// ExtractFromNatsURL returns host:port of a nats:// url
func ExtractFromNatsURL(url string) string {
	param := resolveRegex(
		"^nats://(.*@)?(?P<addr>(?P<host>[^:/]*?)(:(?P<port>\\d+))?)/?$", url)
	if len(param) == 0 || param["addr"] == "" {
		return ""
	}
	if port, ok := param["port"]; ok && port != "" {
		return param["addr"]
	}
	return fmt.Sprintf("%s:4222", param["addr"])
}

func resolveRegex(regEx, url string) (paramsMap map[string]string) {
	compRegEx := regexp.MustCompile(regEx)
	match := compRegEx.FindStringSubmatch(url)

	paramsMap = make(map[string]string)
	if match == nil {
		return paramsMap
	}
	for i, name := range compRegEx.SubexpNames() {
		if i > 0 && i < len(match) && name != "" {
			paramsMap[name] = match[i]
		}
	}
	return paramsMap
}

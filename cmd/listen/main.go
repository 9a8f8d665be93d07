// Command listen subscribes to one user's notification stream and logs every
// notification it receives.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"regreen-notification-service/ddd/domain/entity"
	"regreen-notification-service/pkg/config"
	"regreen-notification-service/pkg/logger"
	"regreen-notification-service/pkg/sseclient"
)

func main() {
	server := flag.StringP("server", "s", "http://localhost:8080", "notification service base URL")
	userID := flag.StringP("user", "u", "", "user id to listen as")
	level := flag.String("log-level", "info", "log level")
	maxRetries := flag.Int("max-retries", sseclient.DefaultMaxRetries, "reconnect attempts before giving up")
	ping := flag.Bool("ping", false, "send a test notification once connected")
	flag.Parse()

	logService := logger.NewLogger(&config.Config{Log: config.LogConfig{Level: *level, Format: "text", Output: "stdout"}})
	logger.SetGlobalLogger(logService)
	defer logService.Close()

	c := sseclient.New(
		sseclient.Config{BaseURL: *server, UserID: *userID, MaxRetries: *maxRetries},
		sseclient.WithOnNotification(func(n entity.Notification) {
			logger.WithFields(logrus.Fields{
				"id":   n.ID,
				"type": n.Type,
			}).Infof("%s: %s", n.Title, n.Message)
		}),
	)
	if !c.Connect() {
		logger.Fatalf("listen: cannot connect user_id=%q", *userID)
	}
	defer c.Close()

	if *ping {
		go sendPing(c)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-quit:
			logger.Infof("listen: unread=%d", c.UnreadCount())
			return
		case <-ticker.C:
			if c.ConnectionLost() {
				logger.Errorf("listen: connection lost")
				return
			}
		}
	}
}

func sendPing(c *sseclient.Controller) {
	for c.State() != sseclient.StateConnected {
		if c.ConnectionLost() {
			return
		}
		time.Sleep(100 * time.Millisecond)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.SendTestNotification(ctx, entity.TypeReservationRequested, "Test notification", "Hello from listen", nil); err != nil {
		logger.Warnf("listen: test notification failed error=%v", err)
	}
}

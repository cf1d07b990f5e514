package bot

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

const coinflipSweepInterval = 1 * time.Minute

// StartCoinflipExpirationWorker refunds coinflip rounds that never filled.
// Returns a cleanup function to stop the worker.
func (b *Bot) StartCoinflipExpirationWorker(ctx context.Context) func() {
	ticker := time.NewTicker(coinflipSweepInterval)
	stopChan := make(chan struct{})

	go func() {
		log.Info("Coinflip expiration worker started")

		b.expireCoinflips(ctx)

		for {
			select {
			case <-ctx.Done():
				log.Info("Coinflip expiration worker shutting down (context cancelled)...")
				return
			case <-stopChan:
				log.Info("Coinflip expiration worker shutting down (stop requested)...")
				return
			case <-ticker.C:
				b.expireCoinflips(ctx)
			}
		}
	}()

	return func() {
		ticker.Stop()
		close(stopChan)
	}
}

// expireCoinflips sweeps every guild with an open round
func (b *Bot) expireCoinflips(ctx context.Context) {
	guildIDs, err := b.services.Rounds.GuildsWithActiveRounds(ctx)
	if err != nil {
		log.WithError(err).Error("Error listing guilds with active coinflip rounds")
		return
	}

	for _, guildID := range guildIDs {
		expired, err := b.services.Coinflip.ExpireStale(ctx, guildID, b.config.CoinflipTTL)
		if err != nil {
			log.WithFields(log.Fields{
				"guild_id": guildID,
				"error":    err,
			}).Error("Error expiring coinflip rounds")
			continue
		}
		if expired > 0 {
			log.WithFields(log.Fields{
				"guild_id": guildID,
				"expired":  expired,
			}).Info("Expired stale coinflip rounds")
		}
	}
}

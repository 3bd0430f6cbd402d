package session

import "github.com/quokkastudio/vcscribe/internal/discord"

// channelPicker chooses which occupied voice channel the bot should
// attend. Highest human occupancy wins; ties go to the channel that was
// first seen occupied, so the choice does not flap between equally busy
// channels.
type channelPicker struct {
	selfID    string
	countBots bool
	firstSeen map[string]int
	nextSeen  int
}

func newChannelPicker(selfID string, countBots bool) *channelPicker {
	return &channelPicker{
		selfID:    selfID,
		countBots: countBots,
		firstSeen: make(map[string]int),
	}
}

func (p *channelPicker) occupancy(ch discord.VoiceChannel) int {
	n := 0
	for _, part := range ch.Participants {
		if part.UserID == p.selfID {
			continue
		}
		if part.IsBot && !p.countBots {
			continue
		}
		n++
	}
	return n
}

// pick returns the best-occupied channel, its occupant count, and
// whether any channel qualifies.
func (p *channelPicker) pick(channels []discord.VoiceChannel) (discord.VoiceChannel, int, bool) {
	var (
		best      discord.VoiceChannel
		bestCount int
		found     bool
	)
	for _, ch := range channels {
		count := p.occupancy(ch)
		if count == 0 {
			continue
		}
		if _, seen := p.firstSeen[ch.ID]; !seen {
			p.firstSeen[ch.ID] = p.nextSeen
			p.nextSeen++
		}
		switch {
		case !found, count > bestCount:
			best, bestCount, found = ch, count, true
		case count == bestCount && p.firstSeen[ch.ID] < p.firstSeen[best.ID]:
			best = ch
		}
	}
	return best, bestCount, found
}

// occupancyOf reports the occupant count of one channel in the listing,
// zero when absent.
func (p *channelPicker) occupancyOf(channels []discord.VoiceChannel, channelID string) int {
	for _, ch := range channels {
		if ch.ID == channelID {
			return p.occupancy(ch)
		}
	}
	return 0
}

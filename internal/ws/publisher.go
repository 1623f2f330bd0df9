package ws

import (
	"strconv"

	"go_auction/internal/audit"
)

// PublishBidAccepted records the accepted bid and broadcasts it to the
// auction's room and the global feed. The audit write happens first;
// broadcast delivery is fire-and-forget.
func PublishBidAccepted(rec *audit.Recorder, auctionID, bidderID int, amount float64) {
	params := map[string]interface{}{
		"auction_id": auctionID,
		"bidder_id":  bidderID,
		"amount":     amount,
	}
	rec.Record(bidderID, "bid.accepted", auctionID, params)

	payload := map[string]interface{}{
		"auctionId": auctionID,
		"bidderId":  bidderID,
		"amount":    amount,
	}
	BroadcastToRoom("auction:"+strconv.Itoa(auctionID), "bid:accepted", payload)
	BroadcastToAll("bid:accepted", payload)
}

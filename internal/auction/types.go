package auction

import "time"

// Auction statuses
const (
	StatusOpen      = "open"
	StatusClosed    = "closed"
	StatusCancelled = "cancelled"
)

// Housekeeping actions
const (
	ActionClose      = "close"
	ActionReopen     = "reopen"
	ActionSetEndDate = "set_end_date"
	ActionExtendDays = "extend_days"
	ActionCancel     = "cancel"
	ActionSetStatus  = "set_status"
)

// Auction is the normalized view of one auction row, whatever the
// physical schema looked like.
type Auction struct {
	ID          int        `json:"id"`
	ItemID      *int       `json:"item_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	ImageURL    string     `json:"image_url"`
	CurrentBid  *string    `json:"current_bid"`
	SellerID    *int       `json:"seller_id"`
	StartDate   *time.Time `json:"start_date"`
	EndTime     *time.Time `json:"end_time"`
	Duration    *int       `json:"duration"`
	Status      string     `json:"status"`
	URL         string     `json:"url"`
}

// CreateInput carries the fields for a combined item + auction insert.
// Optional fields with no recognizable column in the live schema are
// silently dropped from the insert.
type CreateInput struct {
	Title         string
	Description   string
	SellerID      *int
	StartingPrice float64
	EndDate       *time.Time
	Category      string
	SubCategory   string
	ImagePath     string
}

// Created reports the identities resolved by CreateItemAndAuction.
type Created struct {
	AuctionID int `json:"auction_id"`
	ItemID    int `json:"item_id"`
}

// HousekeepingParams carries the per-action parameters for
// UpdateHousekeeping.
type HousekeepingParams struct {
	EndDate *time.Time
	Days    *int
	Status  string
}

// PlaceholderImage is what templates expect when no image is known.
const PlaceholderImage = "/static/placeholder.png"

// Candidate column names tried, in priority order, against whatever the
// live schema offers.
var (
	titleCandidates    = []string{"title", "name", "item_title"}
	descCandidates     = []string{"description", "desc", "details"}
	imageCandidates    = []string{"image_url", "image", "img", "picture", "photo", "imagepath"}
	priceCandidates    = []string{"a_s_price", "current_bid", "price", "starting_price"}
	endDateCandidates  = []string{"a_e_date", "end_date", "a_end", "a_e"}
	durationCandidates = []string{"duration", "a_duration", "i_duration", "length", "days"}
	statusCandidates   = []string{"a_status", "status", "state"}
	startCandidates    = []string{"a_s_date", "start_date", "s_date", "a_start"}

	auctionPKCandidates = []string{"a_id", "id", "auction_id"}
	bidFKCandidates     = []string{"b_a_id", "auction_id", "b_auction_id", "a_id"}

	itemTitleCandidates  = []string{"title", "item_title", "name", "i_title"}
	itemDescCandidates   = []string{"description", "desc", "details", "i_desc"}
	itemOwnerCandidates  = []string{"i_m_id", "m_id", "owner_id", "m_member_id", "m_m_id"}
	itemCatCandidates    = []string{"i_cat", "cat", "category"}
	itemSubCatCandidates = []string{"i_s_cat", "s_cat", "sub_category", "subcategory"}
	itemImageCandidates  = []string{"image_url", "image", "img", "picture", "photo", "imagepath", "i_image"}
	itemIDCandidates     = []string{"item_id", "id", "i_id", "a_item_id"}

	aItemCandidates       = []string{"a_item_id", "item_id", "a_item", "itemid"}
	aMemberCandidates     = []string{"a_m_id", "m_id", "seller_id", "member_id"}
	aStartPriceCandidates = []string{"a_s_price", "starting_price", "start_price", "s_price"}
)

package wayne

// Element identifiers on the auction site's server-rendered ASP.NET
// pages. The detail page exposes every field as a labeled span inside
// the detail panel; the login form uses the classic WebForms naming
// scheme.
const (
	loginUserSelector   = "#txtUserName"
	loginPassSelector   = "#txtPassword"
	loginSubmitSelector = "#btnLogin"

	// detailPanelSelector is the marker element whose presence proves
	// both a successful login and a live listing page.
	detailPanelSelector = "#pnlAuctionDetail"

	// notFoundSelector appears on soft-404 pages for IDs that were
	// never assigned.
	notFoundSelector = "#lblNotFound"
)

// detailFieldIDs maps record fields to the detail page element IDs
// they are read from. A missing element reads as an empty string, not
// an error.
var detailFieldIDs = map[string]string{
	"auctionId":     "lblAuctionID",
	"parcelId":      "lblParcelID",
	"address":       "lblAddress",
	"city":          "lblCity",
	"zip":           "lblZip",
	"status":        "lblStatus",
	"minimumBid":    "lblMinimumBid",
	"currentBid":    "lblCurrentBid",
	"biddingCloses": "lblBiddingCloses",
	"sevValue":      "lblSEV",
	"summerTax":     "lblSummerTax",
	"winterTax":     "lblWinterTax",
}

// removedStatusMarker is matched case-insensitively as a substring of
// the status field; listings carrying it are treated like not-found.
const removedStatusMarker = "removed"

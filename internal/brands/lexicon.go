// internal/brands/lexicon.go
package brands

// Known is the fixed, ordered lexicon of shilajit brands we track. A brand's
// index in this list (1-based) becomes BrandMention.Position, so the order is
// part of the data contract and must not be reshuffled casually.
var Known = []string{
	"Purblack",
	"Himalayan Shilajit",
	"PrimaVie",
	"Lost Empire Herbs",
	"Shilajit Gold",
	"Organic India",
	"Pürblack",
	"Pure Himalayan",
	"Himalayan Healing",
	"Shilajit Resin",
	"Ancient Purity",
	"Sunfood",
	"Banyan Botanicals",
	"Omica Organics",
	"Mountain Drop",
}

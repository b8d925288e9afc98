// Package feed serializes exportable records into the jameslist_feed XML
// document the marketplace importer consumes. Pure transformation: no store
// access, no filtering beyond a hard image cap.
package feed

import (
	"encoding/xml"
	"errors"
	"fmt"
	"time"

	"je-feed-v2/internal/model"
)

// ErrDealerRequired is returned when the dealer identity precondition fails.
// Nothing may be serialized without it.
var ErrDealerRequired = errors.New("dealer id and name are required")

const maxImages = 40

// Meta carries the static feed metadata supplied by configuration.
type Meta struct {
	Version     string
	Reference   string
	Title       string
	Description string
	DealerID    string
	DealerName  string
	Now         time.Time
}

type feedDoc struct {
	XMLName xml.Name `xml:"jameslist_feed"`
	Version string   `xml:"version,attr"`
	Info    feedInfo `xml:"feed_information"`
	Dealer  dealer   `xml:"dealer"`
	Adverts adverts  `xml:"adverts"`
}

type feedInfo struct {
	Reference   string `xml:"reference"`
	Title       string `xml:"title"`
	Description string `xml:"description"`
	Created     string `xml:"created"`
	Updated     string `xml:"updated"`
}

type dealer struct {
	ID   string `xml:"id"`
	Name string `xml:"name"`
}

type adverts struct {
	Adverts []advert `xml:"advert"`
}

type advert struct {
	Reference      string      `xml:"reference,attr"`
	Category       string      `xml:"category,attr"`
	Preowned       string      `xml:"preowned"`
	Type           string      `xml:"type"`
	Brand          string      `xml:"brand"`
	Model          string      `xml:"model"`
	Year           string      `xml:"year"`
	PriceOnRequest string      `xml:"price_on_request"`
	Price          price       `xml:"price"`
	Location       locationXML `xml:"location"`
	Headline       string      `xml:"headline"`
	Description    string      `xml:"description"`
	URL            string      `xml:"url"`
	Media          media       `xml:"media"`
}

type price struct {
	Currency    string `xml:"currency,attr"`
	VATIncluded string `xml:"vat_included,attr"`
	Value       string `xml:",chardata"`
}

type locationXML struct {
	Country string `xml:"country"`
	Region  string `xml:"region"`
	City    string `xml:"city"`
	Zip     string `xml:"zip"`
	Address string `xml:"address"`
}

type media struct {
	Images []mediaImage `xml:"image"`
}

type mediaImage struct {
	URL string `xml:"image_url"`
}

// Build renders the feed document for the given records. Records are assumed
// to have passed the export filter; their reference, brand, model, and year
// are taken as resolved.
func Build(meta Meta, records []model.Record) ([]byte, error) {
	if meta.DealerID == "" || meta.DealerName == "" {
		return nil, ErrDealerRequired
	}

	now := meta.Now.UTC().Format("2006-01-02 15:04:05")
	doc := feedDoc{
		Version: defaultStr(meta.Version, "3.0"),
		Info: feedInfo{
			Reference:   meta.Reference,
			Title:       meta.Title,
			Description: meta.Description,
			Created:     now,
			Updated:     now,
		},
		Dealer: dealer{ID: meta.DealerID, Name: meta.DealerName},
	}

	for _, rec := range records {
		images := rec.Images
		if len(images) > maxImages {
			images = images[:maxImages]
		}
		adv := advert{
			Reference:      rec.JEReference,
			Category:       "car",
			Preowned:       "yes",
			Type:           "sale",
			Brand:          rec.Brand,
			Model:          rec.Model,
			Year:           rec.Year,
			PriceOnRequest: "yes",
			Price:          price{Currency: "USD", VATIncluded: "VAT Excluded"},
			Location: locationXML{
				Country: rec.Location.Country,
				Region:  rec.Location.Region,
				City:    rec.Location.City,
				Zip:     rec.Location.Zip,
				Address: rec.Location.Address,
			},
			Headline:    rec.Title,
			Description: rec.Description,
			URL:         rec.URL,
		}
		for _, u := range images {
			adv.Media.Images = append(adv.Media.Images, mediaImage{URL: u})
		}
		doc.Adverts.Adverts = append(doc.Adverts.Adverts, adv)
	}

	body, err := xml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal feed: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}

func defaultStr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

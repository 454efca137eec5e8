package extractor

// Generic relies only on Open Graph, meta tags, structured data and common price classes.
func Generic() Adapter {
	return New("generic", Rules{})
}

// Amazon covers amazon.* storefronts.
func Amazon() Adapter {
	return New("amazon", Rules{
		Title: []string{"#productTitle", "#title", "#btAsinTitle"},
		Description: []string{
			"#feature-bullets ul",
			"#productDescription",
			"#bookDescription_feature_div",
		},
		Image: []ImageCandidate{
			{Selector: "#landingImage", Attrs: []string{"data-old-hires", "data-a-dynamic-image", "src"}},
			{Selector: "#imgBlkFront", Attrs: []string{"data-a-dynamic-image", "src"}},
			{Selector: "#main-image", Attrs: []string{"data-a-hires", "src"}},
		},
		Price: []PriceCandidate{
			{Selector: "#corePrice_feature_div .a-offscreen"},
			{Selector: "#corePriceDisplay_desktop_feature_div .a-offscreen"},
			{Selector: "#priceblock_dealprice"},
			{Selector: "#priceblock_ourprice"},
			{Selector: "#priceblock_saleprice"},
			{Selector: "#price_inside_buybox"},
			{Selector: "#kindle-price"},
			{Selector: ".a-price .a-offscreen"},
		},
	})
}

// Target covers target.com.
func Target() Adapter {
	return New("target", Rules{
		Title:       []string{`h1[data-test="product-title"]`},
		Description: []string{`div[data-test="item-details-description"]`},
		Image: []ImageCandidate{
			{Selector: `div[data-test="image-gallery-item-0"] img`, Attrs: []string{"src"}},
			{Selector: `div[data-test="product-image"] img`, Attrs: []string{"src"}},
		},
		Price: []PriceCandidate{
			{Selector: `span[data-test="product-price"]`},
			{Selector: `div[data-test="product-price"]`},
		},
	})
}

// Walmart covers walmart.* storefronts.
func Walmart() Adapter {
	return New("walmart", Rules{
		Title: []string{`h1[itemprop="name"]`, "h1#main-title", "h1.prod-ProductTitle"},
		Description: []string{
			`div[data-testid="product-description-content"]`,
			"div.about-desc",
		},
		Image: []ImageCandidate{
			{Selector: `img[data-testid="hero-image"]`, Attrs: []string{"src"}},
			{Selector: ".prod-hero-image img", Attrs: []string{"data-src", "src"}},
		},
		Price: []PriceCandidate{
			{Selector: `[data-testid="price-wrap"] [itemprop="price"]`},
			{Selector: `span[itemprop="price"]`},
			{Selector: ".price-characteristic", Attr: "content"},
			{Selector: ".prod-PriceHero .price-group"},
		},
	})
}

// Etsy covers etsy.com.
func Etsy() Adapter {
	return New("etsy", Rules{
		Title: []string{"h1[data-buy-box-listing-title]", "h1[data-listing-page-title-component]"},
		Description: []string{
			"p[data-product-details-description-text-content]",
			`div[data-id="description-text"]`,
		},
		Image: []ImageCandidate{
			{Selector: "ul[data-carousel-pane-list] img", Attrs: []string{"data-src-zoom-image", "data-src", "src"}},
			{Selector: ".listing-page-image-carousel-component img", Attrs: []string{"data-src-zoom-image", "src"}},
		},
		Price: []PriceCandidate{
			{Selector: `div[data-buy-box-region="price"] p.wt-text-title-larger`},
			{Selector: `div[data-buy-box-region="price"] p`},
			{Selector: `p[data-selector="price-only"]`},
		},
	})
}

package buyer

import "timesniper/lib/selector"

// Ranked locator lists for the purchase flow, most specific first. The
// platform ships utility-class markup with no stable identifiers, so
// every list degrades toward more general shapes as the page drifts.

var buyControlLocators = []selector.Locator{
	selector.Xpath(`//button[contains(@class, 'inline-flex') and contains(@class, 'bg-controls-primary')]`),
	selector.Xpath(`//button[contains(@class, 'bg-controls-primary')]`),
	selector.Xpath(`//button[contains(@class, 'text-primary-100')]`),
	selector.Xpath(`//button[contains(@class, 'primary')]`),
	selector.Xpath(`//button[contains(@class, 'buy')]`),
	selector.Xpath(`//button[text()='Buy']`),
	selector.Xpath(`//button[contains(text(), 'Buy')]`),
	selector.Xpath(`//button[contains(@class, 'rounded')]`),
	selector.Xpath(`//div[contains(@class, 'market')]//button`),
	selector.Xpath(`//button`),
}

var currencyToggleLocators = []selector.Locator{
	selector.Xpath(`//button[contains(text(), 'USD')]`),
	selector.Xpath(`//button[contains(@class, 'currency-switch') and contains(text(), 'USD')]`),
	selector.Xpath(`//div[contains(@class, 'modal')]//button[contains(text(), 'USD')]`),
	selector.Xpath(`//div[contains(@class, 'modal')]//div[contains(@class, 'switch')]//button[last()]`),
}

var amountFieldLocators = []selector.Locator{
	selector.Xpath(`//div[contains(@class, 'modal')]//input[@type='number']`),
	selector.Xpath(`//input[@type='number']`),
	selector.Xpath(`//div[contains(@class, 'modal')]//input[contains(@class, 'amount')]`),
	selector.Xpath(`//div[contains(@class, 'modal')]//input`),
	selector.Css(`div.modal input[type='number']`),
	selector.Css(`input.amount`),
	selector.Css(`div.modal input`),
}

// The offer control's label carries the action verb plus the priced
// quantity; the confirmation control adds a confirmation verb on top.
var (
	offerPattern   = selector.LabelPattern{Contains: []string{"Buy", "mins for $"}}
	confirmPattern = selector.LabelPattern{Contains: []string{"Confirm", "Buy", "mins for $"}}
)

// structural markers that only render on a real profile page
var profileMarkers = []string{
	`a[href*='tab=market']`,
	`div[class*='avatar']`,
	`img[alt*='avatar']`,
}

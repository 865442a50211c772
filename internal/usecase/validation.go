package usecase

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/canalzap/waba-gateway/internal/entity"
)

// ValidationError pairs a failure message with the field or component that
// produced it.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationResult is the verdict of a single rule or of the aggregate.
// Single-failure rules set Error; multi-failure rules and the aggregate set
// Errors. Fields carries the field-tagged view and is populated by
// ValidateCompleteTemplate only.
type ValidationResult struct {
	IsValid bool
	Error   string
	Errors  []string
	Fields  []ValidationError
}

func validResult() ValidationResult {
	return ValidationResult{IsValid: true}
}

func invalidResult(format string, args ...interface{}) ValidationResult {
	return ValidationResult{IsValid: false, Error: fmt.Sprintf(format, args...)}
}

// Character ceilings per component kind, counted in runes.
const (
	BodyCharLimit   = 550
	HeaderCharLimit = 60
	FooterCharLimit = 60
	ButtonCharLimit = 20

	MaxTemplateEmojis  = 10
	MaxTemplateNameLen = 512
	MaxButtonURLLen    = 2000
	MinCarouselCards   = 2
	MaxCarouselCards   = 10
)

var characterLimits = map[string]int{
	"body":   BodyCharLimit,
	"header": HeaderCharLimit,
	"footer": FooterCharLimit,
	"button": ButtonCharLimit,
}

var (
	templateNameRegex = regexp.MustCompile(`^[a-z0-9_]+$`)
	languageCodeRegex = regexp.MustCompile(`^[a-z]{2}_[A-Z]{2}$`)
	phoneNumberRegex  = regexp.MustCompile(`^\+\d{10,15}$`)
	variableRegex     = regexp.MustCompile(`\{\{(\d+)\}\}`)
	buttonMarkupRegex = regexp.MustCompile("[*_~`{}]")
	authBodyRegex     = regexp.MustCompile(`^\{\{1\}\} is your verification code`)

	// Runs of code points in the common pictographic blocks (emoticons,
	// misc symbols and pictographs, transport, regional indicators,
	// dingbats, enclosed characters). This is an approximation: ZWJ
	// sequences, flag pairs and skin-tone modifiers are not segmented,
	// so a joined sequence counts as one run.
	emojiRegex = regexp.MustCompile(`[\x{1F600}-\x{1F64F}\x{1F300}-\x{1F5FF}\x{1F680}-\x{1F6FF}\x{1F1E0}-\x{1F1FF}\x{2702}-\x{27B0}\x{24C2}-\x{1F251}]+`)

	unbalancedBoldRegex   = regexp.MustCompile(`\*[^*]*\*[^*]*\*`)
	balancedBoldRegex     = regexp.MustCompile(`\*[^*]+\*`)
	unbalancedItalicRegex = regexp.MustCompile(`_[^_]*_[^_]*_`)
	balancedItalicRegex   = regexp.MustCompile(`_[^_]+_`)
	unbalancedStrikeRegex = regexp.MustCompile(`~[^~]*~[^~]*~`)
	balancedStrikeRegex   = regexp.MustCompile(`~[^~]+~`)
)

// ValidateCharacterLimits checks the rune-count ceiling for one text field.
// Kind is "body", "header", "footer" or "button"; anything else is itself a
// failure.
func ValidateCharacterLimits(kind, text string) ValidationResult {
	limit, ok := characterLimits[kind]
	if !ok {
		return invalidResult("Unknown component type: %s", kind)
	}

	if n := utf8.RuneCountInString(text); n > limit {
		return invalidResult("%s exceeds %d character limit (%d characters)", kind, limit, n)
	}

	return validResult()
}

// CountEmojis counts pictographic runs in text. Approximate: see the
// emojiRegex note.
func CountEmojis(text string) int {
	return len(emojiRegex.FindAllString(text, -1))
}

// ValidateEmojiLimit enforces the template-wide emoji ceiling. The caller
// must pass every textual field of the template; the limit is global, not
// per field.
func ValidateEmojiLimit(allTexts []string) ValidationResult {
	total := 0
	for _, text := range allTexts {
		total += CountEmojis(text)
	}

	if total > MaxTemplateEmojis {
		return invalidResult("Template has %d emojis, maximum %d allowed", total, MaxTemplateEmojis)
	}

	return validResult()
}

// ValidateFormatting lints inline markup. A marker appearing three or more
// times without a confirmable pairing is flagged; so are consecutive line
// breaks. Pattern heuristics, not a tokenizer: escaped markers can both
// over- and under-flag. Every distinct problem found is returned.
func ValidateFormatting(text string) ValidationResult {
	var errs []string

	if strings.Contains(text, "\n\n") {
		errs = append(errs, `Consecutive line breaks (\n\n) are not allowed`)
	}

	if unbalancedBoldRegex.MatchString(text) && !balancedBoldRegex.MatchString(text) {
		errs = append(errs, "Invalid bold formatting - use *text*")
	}
	if unbalancedItalicRegex.MatchString(text) && !balancedItalicRegex.MatchString(text) {
		errs = append(errs, "Invalid italic formatting - use _text_")
	}
	if unbalancedStrikeRegex.MatchString(text) && !balancedStrikeRegex.MatchString(text) {
		errs = append(errs, "Invalid strikethrough formatting - use ~text~")
	}

	if len(errs) > 0 {
		return ValidationResult{IsValid: false, Errors: errs}
	}
	return validResult()
}

// ValidateTemplateName checks the external identifier format.
func ValidateTemplateName(name string) ValidationResult {
	if !templateNameRegex.MatchString(name) {
		return invalidResult("Template name must contain only lowercase letters, numbers and underscores")
	}
	if utf8.RuneCountInString(name) > MaxTemplateNameLen {
		return invalidResult("Template name exceeds %d characters", MaxTemplateNameLen)
	}
	return validResult()
}

// ValidateTemplateCategory checks case-insensitive membership in the
// accepted categories.
func ValidateTemplateCategory(category string) ValidationResult {
	switch entity.TemplateCategory(strings.ToUpper(category)) {
	case entity.CategoryMarketing, entity.CategoryUtility, entity.CategoryAuthentication:
		return validResult()
	}
	return invalidResult("Invalid category: %s. Must be one of: MARKETING, UTILITY, AUTHENTICATION", category)
}

// ValidateLanguageCode checks the xx_YY locale format.
func ValidateLanguageCode(language string) ValidationResult {
	if !languageCodeRegex.MatchString(language) {
		return invalidResult("Invalid language code format: %s. Must be in format: en_US, pt_BR, etc.", language)
	}
	return validResult()
}

// ValidateAuthenticationFormat checks the mandated opening phrase of an
// AUTHENTICATION body.
func ValidateAuthenticationFormat(body string) ValidationResult {
	if !authBodyRegex.MatchString(body) {
		return invalidResult(`Authentication template must start with "{{1}} is your verification code"`)
	}
	return validResult()
}

// ValidateButtonText rejects emoji, markup characters and line breaks in
// button labels; buttons render as plain controls.
func ValidateButtonText(buttons []entity.Button) ValidationResult {
	for _, b := range buttons {
		if b.Text == "" {
			continue
		}
		if CountEmojis(b.Text) > 0 {
			return invalidResult("Button %q contains emojis. Use plain text only", b.Text)
		}
		if buttonMarkupRegex.MatchString(b.Text) {
			return invalidResult("Button %q contains formatting characters. Use plain text only", b.Text)
		}
		if strings.Contains(b.Text, "\n") {
			return invalidResult("Button %q contains line breaks. Use plain text only", b.Text)
		}
	}
	return validResult()
}

// ValidateURLs checks scheme and length of URL-typed buttons.
func ValidateURLs(buttons []entity.Button) ValidationResult {
	for _, b := range buttons {
		if b.Type != entity.ButtonURL || b.URL == "" {
			continue
		}
		if !strings.HasPrefix(b.URL, "https://") {
			return invalidResult("URL must use HTTPS: %s", b.URL)
		}
		if n := utf8.RuneCountInString(b.URL); n > MaxButtonURLLen {
			return invalidResult("URL exceeds %d character limit (%d characters)", MaxButtonURLLen, n)
		}
	}
	return validResult()
}

// ValidatePhoneNumbers checks the international format of PHONE_NUMBER
// buttons.
func ValidatePhoneNumbers(buttons []entity.Button) ValidationResult {
	for _, b := range buttons {
		if b.Type != entity.ButtonPhoneNumber || b.PhoneNumber == "" {
			continue
		}
		if !phoneNumberRegex.MatchString(b.PhoneNumber) {
			return invalidResult("Phone number must be in international format with +: %s", b.PhoneNumber)
		}
	}
	return validResult()
}

// Template kinds for button-combination rules. Only carousel cards restrict
// which button types may appear together.
const (
	TemplateKindStandard = "STANDARD"
	TemplateKindCarousel = "CAROUSEL"
)

var carouselButtonCombinations = [][]entity.ButtonType{
	{entity.ButtonQuickReply},
	{entity.ButtonURL},
	{entity.ButtonPhoneNumber},
	{entity.ButtonQuickReply, entity.ButtonURL},
	{entity.ButtonQuickReply, entity.ButtonPhoneNumber},
}

// ValidateButtonCombinations checks the set of button types present against
// the carousel whitelist. The set ignores how many buttons of each type
// there are. Standard templates are unrestricted.
func ValidateButtonCombinations(templateKind string, buttons []entity.Button) ValidationResult {
	if templateKind != TemplateKindCarousel {
		return validResult()
	}

	present := buttonTypeSet(buttons)
	for _, combo := range carouselButtonCombinations {
		if len(combo) != len(present) {
			continue
		}
		match := true
		for _, bt := range combo {
			if _, ok := present[bt]; !ok {
				match = false
				break
			}
		}
		if match {
			return validResult()
		}
	}

	observed := make([]string, 0, len(buttons))
	for _, b := range buttons {
		observed = append(observed, string(b.Type))
	}
	return invalidResult(
		"Invalid carousel button combination: [%s]. Valid: [QUICK_REPLY], [URL], [PHONE_NUMBER], [QUICK_REPLY+URL], [QUICK_REPLY+PHONE_NUMBER]",
		strings.Join(observed, ", "),
	)
}

func buttonTypeSet(buttons []entity.Button) map[entity.ButtonType]struct{} {
	set := make(map[entity.ButtonType]struct{}, len(buttons))
	for _, b := range buttons {
		set[b.Type] = struct{}{}
	}
	return set
}

var mediaHeaderExtensions = map[entity.HeaderFormat][]string{
	entity.HeaderImage:    {".jpg", ".jpeg", ".png"},
	entity.HeaderVideo:    {".mp4"},
	entity.HeaderDocument: {".pdf"},
}

// ValidateMediaHeaders checks the example URL of a media header: HTTPS and
// an extension consistent with the declared format. Absent or TEXT headers
// pass.
func ValidateMediaHeaders(header *entity.Component) ValidationResult {
	if header == nil || header.Format == entity.HeaderText || header.Format == "" {
		return validResult()
	}
	if len(header.Example) == 0 {
		return validResult()
	}

	url := header.Example[0]
	if !strings.HasPrefix(url, "https://") {
		return invalidResult("Media URLs must use HTTPS")
	}

	extensions := mediaHeaderExtensions[header.Format]
	lower := strings.ToLower(url)
	for _, ext := range extensions {
		if strings.HasSuffix(lower, ext) {
			return validResult()
		}
	}
	return invalidResult("%s header must end with: %s (got %s)", header.Format, strings.Join(extensions, ", "), url)
}

// ValidateComponentStructure requires exactly one BODY and forbids repeated
// component kinds. BUTTONS is exempt because one BUTTONS component holding
// several buttons is the expected shape; CAROUSEL is exempt because a
// multi-card template carries one CAROUSEL component per card.
func ValidateComponentStructure(components []entity.Component) ValidationResult {
	counts := make(map[entity.ComponentType]int, len(components))
	for _, c := range components {
		counts[c.Type]++
	}

	if counts[entity.ComponentBody] == 0 {
		return invalidResult("BODY component is required for all templates")
	}

	var duplicated []string
	for kind, n := range counts {
		if n > 1 && kind != entity.ComponentButtons && kind != entity.ComponentCarousel {
			duplicated = append(duplicated, string(kind))
		}
	}
	if len(duplicated) > 0 {
		sort.Strings(duplicated)
		return invalidResult("Duplicate components are not allowed: %s", strings.Join(duplicated, ", "))
	}

	return validResult()
}

// ValidateVariableExamples checks that the {{n}} placeholders in text form
// the contiguous sequence 1..k and that exactly k example values were
// supplied. Sequencing and count mismatches are reported separately.
func ValidateVariableExamples(text string, examples []string) ValidationResult {
	matches := variableRegex.FindAllStringSubmatch(text, -1)
	variables := make([]int, 0, len(matches))
	for _, m := range matches {
		var n int
		fmt.Sscanf(m[1], "%d", &n)
		variables = append(variables, n)
	}
	sort.Ints(variables)

	var errs []string

	sequential := true
	for i, v := range variables {
		if v != i+1 {
			sequential = false
			break
		}
	}
	if !sequential {
		found := make([]string, 0, len(variables))
		for _, v := range variables {
			found = append(found, fmt.Sprintf("{{%d}}", v))
		}
		errs = append(errs, fmt.Sprintf("Variables must be sequential starting from {{1}}. Found: %s", strings.Join(found, ", ")))
	}

	if len(variables) != len(examples) {
		errs = append(errs, fmt.Sprintf("Variable count (%d) doesn't match example count (%d)", len(variables), len(examples)))
	}

	if len(errs) > 0 {
		return ValidationResult{IsValid: false, Errors: errs}
	}
	return validResult()
}

// cardFingerprint is the structural identity of a carousel card. All cards
// of a carousel must share card 1's fingerprint.
type cardFingerprint struct {
	hasHeader    bool
	headerFormat entity.HeaderFormat
	buttonCount  int
	buttonTypes  string
}

func fingerprintCard(card entity.Card) cardFingerprint {
	fp := cardFingerprint{
		hasHeader:   card.Header != nil,
		buttonCount: len(card.Buttons),
	}
	if card.Header != nil {
		fp.headerFormat = card.Header.Format
	}

	types := make([]string, 0, len(card.Buttons))
	for _, b := range card.Buttons {
		types = append(types, string(b.Type))
	}
	sort.Strings(types)
	fp.buttonTypes = strings.Join(types, ",")

	return fp
}

// ValidateCarouselConsistency requires 2-10 cards all sharing card 1's
// structure; the first deviating card is named.
func ValidateCarouselConsistency(cards []entity.Card) ValidationResult {
	if len(cards) < MinCarouselCards || len(cards) > MaxCarouselCards {
		return invalidResult("Carousel must have %d-%d cards, got %d", MinCarouselCards, MaxCarouselCards, len(cards))
	}

	first := fingerprintCard(cards[0])
	for i := 1; i < len(cards); i++ {
		if fingerprintCard(cards[i]) != first {
			return invalidResult("Card %d structure doesn't match card 1. All carousel cards must have identical component structure", i+1)
		}
	}

	return validResult()
}

// errorCollector accumulates field-tagged failures across the whole
// aggregate pass. Nothing short-circuits: the caller sees every problem at
// once.
type errorCollector struct {
	fields []ValidationError
}

func (c *errorCollector) add(field string, r ValidationResult) {
	if r.IsValid {
		return
	}
	if r.Error != "" {
		c.fields = append(c.fields, ValidationError{Field: field, Message: r.Error})
	}
	for _, msg := range r.Errors {
		c.fields = append(c.fields, ValidationError{Field: field, Message: msg})
	}
}

func (c *errorCollector) result() ValidationResult {
	if len(c.fields) == 0 {
		return validResult()
	}
	messages := make([]string, 0, len(c.fields))
	for _, fe := range c.fields {
		messages = append(messages, fe.Message)
	}
	return ValidationResult{IsValid: false, Errors: messages, Fields: c.fields}
}

// ValidateCompleteTemplate runs every applicable rule over the template and
// returns the aggregated verdict. Rule order only shapes message order; all
// rules run regardless of earlier failures.
func ValidateCompleteTemplate(t *entity.Template) ValidationResult {
	col := &errorCollector{}

	col.add("name", ValidateTemplateName(t.Name))
	col.add("category", ValidateTemplateCategory(string(t.Category)))
	col.add("language", ValidateLanguageCode(t.Language))
	col.add("components", ValidateComponentStructure(t.Components))

	cards := t.Cards()
	if len(cards) > 0 {
		col.add("carousel", ValidateCarouselConsistency(cards))
	}

	var allTexts []string

	for _, component := range t.Components {
		switch component.Type {
		case entity.ComponentBody:
			allTexts = append(allTexts, component.Text)
			col.add("body", ValidateCharacterLimits("body", component.Text))
			col.add("body", ValidateFormatting(component.Text))
			col.add("body", ValidateVariableExamples(component.Text, component.Example))

		case entity.ComponentHeader:
			if component.Format == entity.HeaderText || component.Format == "" {
				allTexts = append(allTexts, component.Text)
				col.add("header", ValidateCharacterLimits("header", component.Text))
				col.add("header", ValidateFormatting(component.Text))
			} else {
				header := component
				col.add("header", ValidateMediaHeaders(&header))
			}

		case entity.ComponentFooter:
			allTexts = append(allTexts, component.Text)
			col.add("footer", ValidateCharacterLimits("footer", component.Text))
			col.add("footer", ValidateFormatting(component.Text))

		case entity.ComponentButtons:
			col.add("buttons", ValidateButtonText(component.Buttons))
			col.add("buttons", ValidateURLs(component.Buttons))
			col.add("buttons", ValidatePhoneNumbers(component.Buttons))
			col.add("buttons", ValidateButtonCombinations(TemplateKindStandard, component.Buttons))

		case entity.ComponentCarousel:
			// Cards are folded below so their texts and buttons share
			// the template-wide emoji pass.
		}
	}

	for i, card := range cards {
		field := fmt.Sprintf("card %d", i+1)

		if card.Header != nil {
			if card.Header.Format == entity.HeaderText {
				allTexts = append(allTexts, card.Header.Text)
				col.add(field, ValidateCharacterLimits("header", card.Header.Text))
				col.add(field, ValidateFormatting(card.Header.Text))
			} else {
				col.add(field, ValidateMediaHeaders(card.Header))
			}
		}

		allTexts = append(allTexts, card.Body.Text)
		col.add(field, ValidateCharacterLimits("body", card.Body.Text))
		col.add(field, ValidateFormatting(card.Body.Text))
		col.add(field, ValidateVariableExamples(card.Body.Text, card.Body.Example))

		if len(card.Buttons) > 0 {
			col.add(field, ValidateButtonText(card.Buttons))
			col.add(field, ValidateURLs(card.Buttons))
			col.add(field, ValidatePhoneNumbers(card.Buttons))
			col.add(field, ValidateButtonCombinations(TemplateKindCarousel, card.Buttons))
		}
	}

	col.add("template", ValidateEmojiLimit(allTexts))

	if strings.EqualFold(string(t.Category), string(entity.CategoryAuthentication)) {
		col.add("body", ValidateAuthenticationFormat(t.BodyText()))
	}

	return col.result()
}

// ValidationErrorResponse is the presentation shape of a verdict.
type ValidationErrorResponse struct {
	Success          bool              `json:"success"`
	Message          string            `json:"message,omitempty"`
	ValidationErrors []ValidationError `json:"validation_errors,omitempty"`
}

// FormatValidationErrors converts a verdict into a response body. Errors
// are tagged with the field or component that produced them; rule results
// that never carried a field fall back to "template".
func FormatValidationErrors(result ValidationResult) ValidationErrorResponse {
	if result.IsValid {
		return ValidationErrorResponse{Success: true}
	}

	if len(result.Fields) > 0 {
		return ValidationErrorResponse{Success: false, ValidationErrors: result.Fields}
	}

	var fields []ValidationError
	for _, msg := range result.Errors {
		fields = append(fields, ValidationError{Field: "template", Message: msg})
	}
	if result.Error != "" {
		fields = append(fields, ValidationError{Field: "template", Message: result.Error})
	}
	return ValidationErrorResponse{Success: false, ValidationErrors: fields}
}

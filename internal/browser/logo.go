package browser

// logoScript returns the most likely logo URL on the current page, or "".
// Candidates are tried in order: explicit logo images, the apple touch
// icon, the og:image, then any icon link.
const logoScript = `() => {
  const abs = (u) => { try { return new URL(u, document.baseURI).href } catch (e) { return "" } };
  const imgs = Array.from(document.querySelectorAll("header img, img"));
  for (const img of imgs) {
    const hint = ((img.getAttribute("class") || "") + " " + (img.getAttribute("alt") || "") + " " + (img.getAttribute("src") || "")).toLowerCase();
    if (hint.includes("logo") && img.getAttribute("src")) return abs(img.getAttribute("src"));
  }
  const sels = ['link[rel="apple-touch-icon"]', 'meta[property="og:image"]', 'link[rel~="icon"]'];
  for (const sel of sels) {
    const el = document.querySelector(sel);
    if (!el) continue;
    const v = el.getAttribute("href") || el.getAttribute("content");
    if (v) return abs(v);
  }
  return "";
}`

// FallbackLogoURL is the logo service URL used when the homepage has none.
func FallbackLogoURL(domain string) string {
	return "https://logo.clearbit.com/" + domain
}

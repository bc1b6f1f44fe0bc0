package auth

import (
	"fmt"
	"strings"
)

// ShowCookieExtractionGuide displays step-by-step instructions for copying
// the Weibo session cookie out of a browser
func ShowCookieExtractionGuide() {
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("📚 WEIBO COOKIE EXTRACTION GUIDE")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println()

	fmt.Println("This tool needs your Weibo session cookie to call the web API.")
	fmt.Println("Follow these steps to copy it from your browser:")
	fmt.Println()

	fmt.Println("🌐 STEP 1: Open Weibo in your browser")
	fmt.Println("   - Go to https://weibo.com")
	fmt.Println("   - Log in with your account")
	fmt.Println("   - Make sure your timeline loads")
	fmt.Println()

	fmt.Println("🔧 STEP 2: Open Developer Tools")
	fmt.Println("   • Chrome/Edge/Brave: Press F12 or Ctrl+Shift+I (Cmd+Option+I on Mac)")
	fmt.Println("   • Firefox: Press F12 or Ctrl+Shift+I (Cmd+Option+I on Mac)")
	fmt.Println("   • Safari: Enable Developer menu in Preferences, then Cmd+Option+I")
	fmt.Println()

	fmt.Println("📡 STEP 3: Go to the Network tab")
	fmt.Println("   - Click on the 'Network' tab in Developer Tools")
	fmt.Println("   - If it's empty, refresh the page (F5)")
	fmt.Println()

	fmt.Println("🍪 STEP 4: Copy the full Cookie header")
	fmt.Println("   1. Look for any request to 'weibo.com' (e.g. /ajax/...)")
	fmt.Println("   2. Click on it and open the 'Headers' section")
	fmt.Println("   3. Scroll to 'Request Headers'")
	fmt.Println("   4. Find the 'Cookie:' line and copy its ENTIRE value")
	fmt.Println()

	fmt.Println("💡 TIPS:")
	fmt.Println("   • The blob must contain an XSRF-TOKEN=... segment; the tool")
	fmt.Println("     refuses cookies without it")
	fmt.Println("   • Copy the whole line, separators and all; do not pick out")
	fmt.Println("     individual cookies")
	fmt.Println("   • Session cookies expire, so you may need to refresh them")
	fmt.Println()

	fmt.Println("⚠️  SECURITY WARNING:")
	fmt.Println("   • This cookie gives FULL access to your Weibo account")
	fmt.Println("   • NEVER share it with anyone")
	fmt.Println("   • Store it securely (this tool encrypts saved sessions)")
	fmt.Println()
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println()
}

// ShowQuickExtractGuide shows a condensed version for experienced users
func ShowQuickExtractGuide() {
	fmt.Println("\n🍪 Quick Guide: F12 → Network tab → Refresh → Click any weibo.com request → Headers → Cookie")
	fmt.Println("   Copy the entire Cookie value; it must include XSRF-TOKEN=...")
	fmt.Println("   Run 'wbprivacy auth guide' for detailed instructions")
}

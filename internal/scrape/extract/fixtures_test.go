package extract_test

const base = "https://shop.test"

const reviewsPage1 = `<html><body>
<div id="cm_cr-review_list">
  <div data-hook="review" id="R1">
    <a data-hook="review-author"><span>Ana P.</span></a>
    <i data-hook="review-star-rating" class="a-icon a-icon-star a-star-5"><span class="a-icon-alt">5.0 out of 5 stars</span></i>
    <span data-hook="review-date">Reviewed in the United States on March 3, 2026</span>
    <span data-hook="review-body"><span>Bright, sturdy and the arm holds its position.</span></span>
    <a data-hook="expand-review" href="javascript:void(0)">Read more</a>
  </div>
  <div data-hook="review" id="R2">
    <i class="a-icon a-icon-star a-star-4"></i>
    <span data-hook="review-body"><span>Works well on my desk.</span></span>
  </div>
  <div data-hook="review" id="R3">
    <a data-hook="review-author">Ghost</a>
    <span data-hook="review-body"><span>ok</span></span>
  </div>
  <div data-hook="review" id="R4">
    <span data-hook="review-star-rating" aria-label="9 out of 5 stars"></span>
  </div>
</div>
<ul class="a-pagination"><li class="a-last"><a href="/product-reviews/X1?pageNumber=2">Next page</a></li></ul>
</body></html>`

const reviewsPage2 = `<html><body>
<div data-hook="review" id="R5">
  <span class="a-profile-name">Bo</span>
  <i data-hook="review-star-rating" aria-label="3.0 out of 5 stars" class="a-icon a-icon-star"></i>
  <span data-hook="review-date">Reviewed on March 9, 2026</span>
  <span data-hook="review-body">Shade wobbles a little but the light is fine.</span>
</div>
<ul class="a-pagination"><li class="a-disabled a-last">Next page</li></ul>
</body></html>`

const linkedExpandPage = `<html><body>
<div data-hook="review" id="R1">
  <a data-hook="review-author"><span>Ana P.</span></a>
  <i class="a-icon a-icon-star a-star-5"></i>
  <span data-hook="review-body"><span>Bright, sturdy and the arm holds its position.</span></span>
  <div data-hook="expand-review"><a href="/gp/customer-reviews/R1">Read more</a></div>
</div>
<ul class="a-pagination"><li class="a-last"><a href="/product-reviews/X1?pageNumber=2">Next page</a></li></ul>
</body></html>`

const noReviewsPage = `<html><body>
<div class="cr-empty"><h3>No reviews yet</h3><p>Share your thoughts with other customers</p></div>
</body></html>`

const disabledNextPage = `<html><body>
<div data-hook="review"><span data-hook="review-body">Long enough body text here.</span></div>
<a aria-label="Next Page" class="s-pagination-next a-disabled" href="/p2">Next</a>
<span aria-label="Next results" aria-disabled="true"></span>
</body></html>`

const hiddenNextPage = `<html><body>
<div data-hook="review"><span data-hook="review-body">Long enough body text here.</span></div>
<div style="display:none"><a data-hook="pagination-next-link" href="/p2">Next</a></div>
</body></html>`

const legacyReviewsPage = `<html><body>
<div id="customer_review-RX1">
  <span class="a-icon-alt">4 out of 5 stars</span>
  <span class="review-date">Reviewed on May 1, 2025</span>
  <div data-hook="review-body">Legacy markup still extracts fine.</div>
</div>
</body></html>`

const searchPage = `<html><body>
<div class="s-main-slot">
  <div data-component-type="sp-sponsored-result" data-index="0">
    <h2><a href="/Ad-Lamp/dp/B0SPONSOR1">Ad Lamp</a></h2>
  </div>
  <div data-component-type="s-search-result" data-index="1">
    <h2><a href="/Desk-Lamp-A/dp/B0000000A1/ref=sr_1_1"><span>Desk Lamp A</span></a></h2>
  </div>
  <div data-component-type="s-search-result" data-component-sub-type="sp-ad-result" data-index="2">
    <h2><a href="/Ad-Two/dp/B0SPONSOR2">Ad Two</a></h2>
  </div>
  <div data-component-type="s-search-result" data-index="3">
    <span class="puis-label-popover">Sponsored</span>
    <h2><a href="/Ad-Three/dp/B0SPONSOR3">Ad Three</a></h2>
  </div>
  <div data-component-type="s-search-result" data-index="4">
    <span class="s-sponsored-label" style="display: none">Sponsored</span>
    <a class="a-link-normal" href="/gp/product/B0000000B2?th=1"><span class="a-text-normal">Desk Lamp B</span></a>
  </div>
  <div data-component-type="s-search-result" data-component-sub-type="standard-list" data-index="5">
    <a href="https://shop.test/Lamp-C/dp/B0000000C3"><img alt=""></a>
  </div>
  <div data-component-type="s-search-result" data-index="6">
    <p>No link here</p>
  </div>
</div>
</body></html>`

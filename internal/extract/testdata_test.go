package extract

const shopeeLabel = `Shopee
SPX Express
SPXMY05826637837B
Order ID: 250915J40YG6B1
Ship By Date: 20/09/2025
Recipient Details
Name: Siti Aminah
Phone: +60 12-345 6789
Address: No. 12, Jalan Mawar 3, Taman Sri Muda, Shah Alam, Selangor
Postcode: 40400
Product Name: Cotton Baju Kurung Blue
SKU: BK-BLU-M
Qty: 2
Seller: Kedai Fesyen Ain
Cashless`

const tiktokLabel = `TikTok Shop
J&T Express
Tracking No: 630012345678
Order ID: 576461413038785752
Ship Date: 2025-10-24 14:30
Receiver: Ali Bin Abu
Phone: (+60)12*****89
Address: No 8, Lorong Kenari 2, Taman Bukit Indah, 81200 Johor Bahru, Johor
Product: Wireless Earbuds Pro
SKU: WEP-001
Qty: 1
COD: RM 49.90`
